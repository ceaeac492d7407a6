package query

import (
	"fmt"
	"strings"
	"time"
)

// Field описывает поле ресурса, доступное в запросах списка.
type Field struct {
	Name   string // публичное имя (как в JSON)
	Column string // SQL-выражение
	Kind   Kind
	Enum   []string
	Filter bool
	Sort   bool
	Select bool
}

type Schema struct {
	fields       map[string]Field
	idField      string
	DefaultSort  string
	DefaultLimit int
	MaxLimit     int
}

// NewSchema создаёт схему. Первое поле считается идентификатором: оно всегда попадает в select
// и используется как последний ключ сортировки.
func NewSchema(defaultSort string, fields ...Field) *Schema {
	s := &Schema{
		fields:       make(map[string]Field, len(fields)),
		DefaultSort:  defaultSort,
		DefaultLimit: 10,
		MaxLimit:     100,
	}
	for i, f := range fields {
		if i == 0 {
			s.idField = f.Name
		}
		s.fields[f.Name] = f
	}
	return s
}

func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Where строит условие WHERE. Плейсхолдеры нумеруются начиная с startArg.
func (s *Schema) Where(filters []Filter, startArg int) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	n := startArg

	for _, flt := range filters {
		f, ok := s.fields[flt.Field]
		if !ok {
			continue
		}
		ph := fmt.Sprintf("$%d", n)

		switch {
		case f.Kind == Tags && flt.Op == Eq:
			conds = append(conds, fmt.Sprintf("%s ? %s", f.Column, ph))
			args = append(args, flt.Value)
		case f.Kind == Tags && flt.Op == In:
			conds = append(conds, fmt.Sprintf("%s ?| %s", f.Column, ph))
			args = append(args, typedList(Tags, flt.Value))
		case flt.Op == In:
			conds = append(conds, fmt.Sprintf("%s = ANY(%s)", f.Column, ph))
			args = append(args, typedList(f.Kind, flt.Value))
		default:
			conds = append(conds, fmt.Sprintf("%s %s %s", f.Column, sqlOp(flt.Op), ph))
			args = append(args, flt.Value)
		}
		n++
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// OrderBy строит ORDER BY; идентификатор добавляется последним ключом для стабильной пагинации.
func (s *Schema) OrderBy(keys []SortKey) string {
	parts := make([]string, 0, len(keys)+1)
	hasID := false
	for _, k := range keys {
		f, ok := s.fields[k.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, f.Column+" "+dir)
		if k.Field == s.idField {
			hasID = true
		}
	}
	if !hasID {
		parts = append(parts, s.fields[s.idField].Column+" DESC")
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// Projection строит список колонок с псевдонимами по публичным именам полей.
func (s *Schema) Projection(names []string) string {
	cols := make([]string, 0, len(names))
	for _, name := range names {
		f, ok := s.fields[name]
		if !ok {
			continue
		}
		cols = append(cols, fmt.Sprintf(`%s AS "%s"`, f.Column, f.Name))
	}
	return strings.Join(cols, ", ")
}

func sqlOp(op Operator) string {
	switch op {
	case Ne:
		return "<>"
	case Gt:
		return ">"
	case Gte:
		return ">="
	case Lt:
		return "<"
	case Lte:
		return "<="
	default:
		return "="
	}
}

// typedList приводит []any к срезу конкретного типа, чтобы pgx закодировал его как массив.
func typedList(k Kind, v any) any {
	list, _ := v.([]any)
	switch k {
	case Int:
		out := make([]int64, 0, len(list))
		for _, x := range list {
			out = append(out, x.(int64))
		}
		return out
	case Time:
		out := make([]time.Time, 0, len(list))
		for _, x := range list {
			out = append(out, x.(time.Time))
		}
		return out
	default:
		out := make([]string, 0, len(list))
		for _, x := range list {
			out = append(out, fmt.Sprint(x))
		}
		return out
	}
}
