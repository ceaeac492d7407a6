package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return NewSchema("-createdAt",
		Field{Name: "id", Column: "a.id", Kind: Int, Filter: true, Sort: true, Select: true},
		Field{Name: "title", Column: "a.title", Kind: String, Filter: true, Sort: true, Select: true},
		Field{Name: "category", Column: "a.category", Kind: Enum, Enum: []string{"景点游览", "美食探索"}, Filter: true, Select: true},
		Field{Name: "published", Column: "a.published", Kind: Bool, Filter: true},
		Field{Name: "viewCount", Column: "a.view_count", Kind: Int, Filter: true, Sort: true, Select: true},
		Field{Name: "tags", Column: "a.tags", Kind: Tags, Filter: true, Select: true},
		Field{Name: "createdAt", Column: "a.created_at", Kind: Time, Filter: true, Sort: true, Select: true},
		Field{Name: "content", Column: "a.content", Kind: String, Select: true},
	)
}

func TestParseDefaults(t *testing.T) {
	q, err := Parse(url.Values{}, testSchema(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 0, q.Offset())
	assert.Equal(t, []SortKey{{Field: "createdAt", Desc: true}}, q.Sort)
	assert.Empty(t, q.Filters)
	assert.Empty(t, q.Select)
}

func TestParseCategoryPageScenario(t *testing.T) {
	values, _ := url.ParseQuery("category=景点游览&sort=-createdAt&page=2&limit=5")
	q, err := Parse(values, testSchema(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, 5, q.Offset())
	require.Len(t, q.Filters, 1)
	assert.Equal(t, Filter{Field: "category", Op: Eq, Value: "景点游览"}, q.Filters[0])
}

func TestParseOperators(t *testing.T) {
	values := url.Values{
		"viewCount[gte]": {"10"},
		"viewCount[lt]":  {"100"},
		"tags[in]":       {"乌镇, 西湖"},
		"createdAt[gt]":  {"2024-01-02"},
		"published":      {"true"},
	}
	q, err := Parse(values, testSchema(), 0)
	require.NoError(t, err)
	require.Len(t, q.Filters, 5)

	assert.Equal(t, Filter{Field: "createdAt", Op: Gt, Value: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, q.Filters[0])
	assert.Equal(t, Filter{Field: "published", Op: Eq, Value: true}, q.Filters[1])
	assert.Equal(t, Filter{Field: "tags", Op: In, Value: []any{"乌镇", "西湖"}}, q.Filters[2])
	assert.Equal(t, Filter{Field: "viewCount", Op: Gte, Value: int64(10)}, q.Filters[3])
	assert.Equal(t, Filter{Field: "viewCount", Op: Lt, Value: int64(100)}, q.Filters[4])
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":         "author[gt]=1",
		"unknown operator":      "viewCount[regex]=1",
		"substring lookalike":   "gte=1",
		"operator not for kind": "published[gt]=true",
		"bad int":               "viewCount=abc",
		"bad enum":              "category=火星",
		"bad page":              "page=0",
		"page overflows offset": "page=9223372036854775807&limit=100",
		"bad limit":             "limit=-3",
		"bad sort":              "sort=-password",
		"bad select":            "select=title,password",
		"not filterable":        "content=x",
		"empty in":              "viewCount[in]=,",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			values, err := url.ParseQuery(raw)
			require.NoError(t, err)
			_, err = Parse(values, testSchema(), 0)
			var qerr *Error
			assert.ErrorAs(t, err, &qerr)
		})
	}
}

func TestParseLargePageKeepsOffsetPositive(t *testing.T) {
	q, err := Parse(url.Values{"page": {"92233720368547758"}, "limit": {"100"}}, testSchema(), 0)
	require.NoError(t, err)
	assert.Positive(t, q.Offset())
}

func TestParseLimitClampAndDefault(t *testing.T) {
	q, err := Parse(url.Values{"limit": {"1000"}}, testSchema(), 0)
	require.NoError(t, err)
	assert.Equal(t, 100, q.Limit)

	q, err = Parse(url.Values{}, testSchema(), 25)
	require.NoError(t, err)
	assert.Equal(t, 25, q.Limit)
}

func TestParseSelectAlwaysHasID(t *testing.T) {
	q, err := Parse(url.Values{"select": {"title,content,title"}}, testSchema(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title", "content"}, q.Select)
}

func TestParseIgnoresLang(t *testing.T) {
	q, err := Parse(url.Values{"lang": {"en"}}, testSchema(), 0)
	require.NoError(t, err)
	assert.Empty(t, q.Filters)
}

func TestParseTagsAreLowerCased(t *testing.T) {
	q, err := Parse(url.Values{"tags": {"Suzhou"}}, testSchema(), 10)
	require.NoError(t, err)
	require.Len(t, q.Filters, 1)
	assert.Equal(t, "suzhou", q.Filters[0].Value)

	q, err = Parse(url.Values{"tags[in]": {"West Lake, GuZhen,园林"}}, testSchema(), 10)
	require.NoError(t, err)
	require.Len(t, q.Filters, 1)
	assert.Equal(t, []any{"west lake", "guzhen", "园林"}, q.Filters[0].Value)

	q, err = Parse(url.Values{"title": {"Suzhou"}}, testSchema(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Suzhou", q.Filters[0].Value)
}

func TestWhere(t *testing.T) {
	s := testSchema()
	where, args := s.Where([]Filter{
		{Field: "category", Op: Eq, Value: "景点游览"},
		{Field: "viewCount", Op: In, Value: []any{int64(1), int64(2)}},
		{Field: "tags", Op: Eq, Value: "乌镇"},
		{Field: "tags", Op: In, Value: []any{"a", "b"}},
		{Field: "createdAt", Op: Lte, Value: time.Unix(0, 0)},
	}, 3)

	assert.Equal(t,
		" WHERE a.category = $3 AND a.view_count = ANY($4) AND a.tags ? $5 AND a.tags ?| $6 AND a.created_at <= $7",
		where)
	require.Len(t, args, 5)
	assert.Equal(t, []int64{1, 2}, args[1])
	assert.Equal(t, []string{"a", "b"}, args[3])

	where, args = s.Where(nil, 1)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestOrderBy(t *testing.T) {
	s := testSchema()
	assert.Equal(t, " ORDER BY a.created_at DESC, a.title ASC, a.id DESC",
		s.OrderBy([]SortKey{{Field: "createdAt", Desc: true}, {Field: "title"}}))
	assert.Equal(t, " ORDER BY a.id ASC", s.OrderBy([]SortKey{{Field: "id"}}))
}

func TestProjection(t *testing.T) {
	assert.Equal(t, `a.id AS "id", a.view_count AS "viewCount"`, testSchema().Projection([]string{"id", "viewCount"}))
}

func TestWithFilterDoesNotAlias(t *testing.T) {
	base := ListQuery{Filters: make([]Filter, 1, 4)}
	a := base.WithFilter(Filter{Field: "published", Op: Eq, Value: true})
	b := base.WithFilter(Filter{Field: "published", Op: Eq, Value: false})
	assert.Equal(t, true, a.Filters[1].Value)
	assert.Equal(t, false, b.Filters[1].Value)
	assert.Len(t, base.Filters, 1)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 5, 11)
	require.NotNil(t, p.Prev)
	require.NotNil(t, p.Next)
	assert.Equal(t, PageRef{Page: 1, Limit: 5}, *p.Prev)
	assert.Equal(t, PageRef{Page: 3, Limit: 5}, *p.Next)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPagination(2, 5, 10)
	assert.NotNil(t, p.Prev)
	assert.Nil(t, p.Next)

	p = NewPagination(1, 10, 0)
	assert.Nil(t, p.Prev)
	assert.Nil(t, p.Next)
	assert.Equal(t, 0, p.TotalPages)
}
