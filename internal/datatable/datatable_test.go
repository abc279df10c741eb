package datatable

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var courseSpec = Spec{
	Sortable: map[string]string{
		"title":      "c.title",
		"price":      "c.price_cents",
		"created_at": "c.created_at",
	},
	DefaultSort: "created_at.desc",
	Filters: map[string]Filter{
		"q":            {Kind: Search, Columns: []string{"c.title", "c.slug"}},
		"category_id":  {Kind: Int, Columns: []string{"c.category_id"}},
		"is_published": {Kind: Bool, Columns: []string{"c.is_published"}},
		"status":       {Kind: In, Columns: []string{"c.status"}},
		"created_from": {Kind: DateFrom, Columns: []string{"c.created_at"}},
		"created_to":   {Kind: DateTo, Columns: []string{"c.created_at"}},
		"owner":        {Kind: UUID, Columns: []string{"c.owner_id"}},
	},
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse(url.Values{}, courseSpec)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, " ORDER BY c.created_at DESC", p.OrderBy())
	assert.Empty(t, p.Filters)

	where, args := p.Where(1)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"page=3&per_page=25", 3, 25},
		{"page=0&per_page=0", 1, 1},
		{"page=-2&per_page=1000", 1, MaxPerPage},
		{"page=abc&per_page=xyz", 1, DefaultPerPage},
		{"page=922337203685477580&per_page=100", MaxPage, MaxPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			p, err := Parse(q, courseSpec)
			require.NoError(t, err)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.limit, p.PerPage)

			_, args := p.LimitOffset(1)
			assert.GreaterOrEqual(t, args[1].(int), 0)
			assert.LessOrEqual(t, args[1].(int), math.MaxInt32)
		})
	}
}

func TestParseSort(t *testing.T) {
	q := url.Values{"sort": {"price.desc,title"}}
	p, err := Parse(q, courseSpec)
	require.NoError(t, err)

	assert.Equal(t, " ORDER BY c.price_cents DESC, c.title ASC", p.OrderBy())
	assert.Equal(t, "price.desc,title.asc", p.SortString())

	_, err = Parse(url.Values{"sort": {"password.asc"}}, courseSpec)
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = Parse(url.Values{"sort": {"title.sideways"}}, courseSpec)
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestConditions(t *testing.T) {
	owner := uuid.New()
	q := url.Values{
		"q":            {"first aid"},
		"category_id":  {"4"},
		"is_published": {"true"},
		"status":       {"requested, enrolled,"},
		"created_from": {"2026-01-01"},
		"created_to":   {"2026-01-31"},
		"owner":        {owner.String()},
		"unknown":      {"ignored"},
	}
	p, err := Parse(q, courseSpec)
	require.NoError(t, err)

	where, args := p.Where(2, "c.deleted_at IS NULL")
	assert.Equal(t,
		" WHERE c.deleted_at IS NULL"+
			" AND c.category_id = $2"+
			" AND c.created_at >= $3"+
			" AND c.created_at < $4"+
			" AND c.is_published = $5"+
			" AND c.owner_id = $6"+
			" AND (c.title ILIKE '%' || $7 || '%' OR c.slug ILIKE '%' || $7 || '%')"+
			" AND c.status = ANY($8)",
		where)

	require.Len(t, args, 7)
	assert.Equal(t, 4, args[0])
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), args[1])
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), args[2])
	assert.Equal(t, true, args[3])
	assert.Equal(t, owner, args[4])
	assert.Equal(t, "first aid", args[5])
	assert.Equal(t, []string{"requested", "enrolled"}, args[6])

	assert.Equal(t, "requested,enrolled", p.Filters["status"])
	assert.NotContains(t, p.Filters, "unknown")
}

func TestSearchEscapesWildcards(t *testing.T) {
	p, err := Parse(url.Values{"q": {`100%_off\`}}, courseSpec)
	require.NoError(t, err)

	_, args := p.Where(1)
	require.Len(t, args, 1)
	assert.Equal(t, `100\%\_off\\`, args[0])
	assert.Equal(t, `100%_off\`, p.Filters["q"])
}

func TestInvalidFilters(t *testing.T) {
	for _, q := range []url.Values{
		{"created_from": {"01/02/2026"}},
		{"category_id": {"four"}},
		{"is_published": {"maybe"}},
		{"owner": {"not-a-uuid"}},
	} {
		_, err := Parse(q, courseSpec)
		assert.ErrorIs(t, err, ErrInvalidFilter, q.Encode())
	}
}

func TestLimitOffsetAndPagination(t *testing.T) {
	q := url.Values{"page": {"3"}, "per_page": {"20"}, "is_published": {"1"}}
	p, err := Parse(q, courseSpec)
	require.NoError(t, err)

	clause, args := p.LimitOffset(4)
	assert.Equal(t, " LIMIT $4 OFFSET $5", clause)
	assert.Equal(t, []interface{}{20, 40}, args)

	pg := p.Pagination(41)
	assert.Equal(t, 3, pg.Page)
	assert.Equal(t, 20, pg.PerPage)
	assert.Equal(t, 41, pg.TotalItems)
	assert.Equal(t, 3, pg.TotalPages)
	assert.Equal(t, "created_at.desc", pg.Sort)
	assert.Equal(t, map[string]string{"is_published": "true"}, pg.Filters)

	st := p.State()
	assert.Equal(t, State{Page: 3, PerPage: 20, Sort: "created_at.desc", Filters: map[string]string{"is_published": "true"}}, st)
}
