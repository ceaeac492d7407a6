// Package query разбирает строку запроса списка (фильтры, select, sort, page, limit)
// в типизированный ListQuery и строит по нему SQL через белый список полей ресурса.
//
// Формат фильтров: field=value (eq) или field[op]=value, op ∈ {eq, ne, gt, gte, lt, lte, in}.
// Для in значения перечисляются через запятую.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Operator string

const (
	Eq  Operator = "eq"
	Ne  Operator = "ne"
	Gt  Operator = "gt"
	Gte Operator = "gte"
	Lt  Operator = "lt"
	Lte Operator = "lte"
	In  Operator = "in"
)

type Kind int

const (
	String Kind = iota
	Int
	Bool
	Time
	Enum
	Tags
)

// операторы, допустимые для каждого вида значения
var allowedOps = map[Kind][]Operator{
	String: {Eq, Ne, In},
	Int:    {Eq, Ne, Gt, Gte, Lt, Lte, In},
	Bool:   {Eq, Ne},
	Time:   {Eq, Ne, Gt, Gte, Lt, Lte},
	Enum:   {Eq, Ne, In},
	Tags:   {Eq, In},
}

// Зарезервированные параметры, которые не считаются фильтрами.
const (
	ParamSelect = "select"
	ParamSort   = "sort"
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamLang   = "lang"
)

var reserved = map[string]struct{}{
	ParamSelect: {}, ParamSort: {}, ParamPage: {}, ParamLimit: {}, ParamLang: {},
}

type Filter struct {
	Field string
	Op    Operator
	Value any // string | int64 | bool | time.Time; для In — []any
}

type SortKey struct {
	Field string
	Desc  bool
}

type ListQuery struct {
	Filters []Filter
	Select  []string
	Sort    []SortKey
	Page    int
	Limit   int
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// WithFilter возвращает копию запроса с дополнительным фильтром.
func (q ListQuery) WithFilter(f Filter) ListQuery {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, f)
	return q
}

// Error — ошибка разбора конкретного параметра.
type Error struct {
	Param  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Reason)
}

func invalid(param, format string, args ...any) *Error {
	return &Error{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// Parse разбирает параметры запроса по схеме ресурса. defaultLimit <= 0 — брать лимит схемы.
func Parse(values url.Values, s *Schema, defaultLimit int) (ListQuery, error) {
	if defaultLimit <= 0 {
		defaultLimit = s.DefaultLimit
	}
	q := ListQuery{Page: 1, Limit: defaultLimit}

	if v := strings.TrimSpace(values.Get(ParamPage)); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return q, invalid(ParamPage, "must be a positive integer")
		}
		q.Page = page
	}
	if v := strings.TrimSpace(values.Get(ParamLimit)); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return q, invalid(ParamLimit, "must be a positive integer")
		}
		q.Limit = limit
	}
	if q.Limit > s.MaxLimit {
		q.Limit = s.MaxLimit
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return q, invalid(ParamPage, "too large")
	}

	sortSpec := strings.TrimSpace(values.Get(ParamSort))
	if sortSpec == "" {
		sortSpec = s.DefaultSort
	}
	keys, err := s.parseSort(sortSpec)
	if err != nil {
		return q, err
	}
	q.Sort = keys

	if v := strings.TrimSpace(values.Get(ParamSelect)); v != "" {
		sel, err := s.parseSelect(v)
		if err != nil {
			return q, err
		}
		q.Select = sel
	}

	// порядок фильтров детерминирован — удобно для логов и тестов
	params := make([]string, 0, len(values))
	for k := range values {
		if _, skip := reserved[k]; !skip {
			params = append(params, k)
		}
	}
	sort.Strings(params)

	for _, param := range params {
		f, err := s.parseFilter(param, values[param])
		if err != nil {
			return q, err
		}
		q.Filters = append(q.Filters, f)
	}
	return q, nil
}

func (s *Schema) parseSort(raw string) ([]SortKey, error) {
	var keys []SortKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := SortKey{Field: part}
		if strings.HasPrefix(part, "-") {
			key = SortKey{Field: part[1:], Desc: true}
		}
		f, ok := s.fields[key.Field]
		if !ok || !f.Sort {
			return nil, invalid(ParamSort, "cannot sort by %q", key.Field)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *Schema) parseSelect(raw string) ([]string, error) {
	out := []string{s.idField}
	seen := map[string]struct{}{s.idField: {}}
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, ok := s.fields[name]
		if !ok || !f.Select {
			return nil, invalid(ParamSelect, "unknown field %q", name)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

func (s *Schema) parseFilter(param string, raw []string) (Filter, error) {
	name, op := param, Eq
	if i := strings.IndexByte(param, '['); i > 0 && strings.HasSuffix(param, "]") {
		name, op = param[:i], Operator(param[i+1:len(param)-1])
	}

	f, ok := s.fields[name]
	if !ok || !f.Filter {
		return Filter{}, invalid(param, "unknown filter field %q", name)
	}
	if !opAllowed(f.Kind, op) {
		return Filter{}, invalid(param, "operator %q is not supported", op)
	}
	if len(raw) == 0 {
		return Filter{}, invalid(param, "value is required")
	}
	value := strings.TrimSpace(raw[0])

	if op == In {
		var list []any
		for _, item := range strings.Split(value, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			v, err := f.convert(item)
			if err != nil {
				return Filter{}, invalid(param, "%v", err)
			}
			list = append(list, v)
		}
		if len(list) == 0 {
			return Filter{}, invalid(param, "value is required")
		}
		return Filter{Field: name, Op: In, Value: list}, nil
	}

	v, err := f.convert(value)
	if err != nil {
		return Filter{}, invalid(param, "%v", err)
	}
	return Filter{Field: name, Op: op, Value: v}, nil
}

func opAllowed(k Kind, op Operator) bool {
	for _, allowed := range allowedOps[k] {
		if allowed == op {
			return true
		}
	}
	return false
}

func (f Field) convert(v string) (any, error) {
	switch f.Kind {
	case Int:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	case Bool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", v)
		}
		return b, nil
	case Time:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, nil
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date", v)
		}
		return t, nil
	case Enum:
		for _, allowed := range f.Enum {
			if allowed == v {
				return v, nil
			}
		}
		return nil, fmt.Errorf("%q is not one of %s", v, strings.Join(f.Enum, ", "))
	case Tags:
		// теги хранятся в нижнем регистре
		if v == "" {
			return nil, fmt.Errorf("empty value")
		}
		return strings.ToLower(v), nil
	default:
		if v == "" {
			return nil, fmt.Errorf("empty value")
		}
		return v, nil
	}
}
