// Package datatable turns list query parameters (page, per_page, sort and
// filters) into SQL fragments for the admin list endpoints, and echoes the
// normalized state back so a client can keep its URL in sync.
package datatable

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/careacademy/academy-backend/internal/response"
	"github.com/google/uuid"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps the row offset within a Postgres integer.
	MaxPage = math.MaxInt32 / MaxPerPage

	dateLayout = "2006-01-02"
)

var (
	ErrInvalidSort   = errors.New("invalid sort parameter")
	ErrInvalidFilter = errors.New("invalid filter parameter")
)

// FilterKind selects how a filter value is parsed and compared.
type FilterKind int

const (
	// Equals compares the raw string value.
	Equals FilterKind = iota
	UUID
	Int
	Bool
	// In takes a comma-separated list and matches any of its items.
	In
	// Search matches the value as a case-insensitive substring of any column.
	Search
	// DateFrom matches rows on or after the given day.
	DateFrom
	// DateTo matches rows on or before the given day.
	DateTo
)

// Filter binds a query parameter to one or more SQL columns. Only Search
// uses more than the first column.
type Filter struct {
	Kind    FilterKind
	Columns []string
}

// Spec declares what a list endpoint accepts.
type Spec struct {
	// Sortable maps API field names to SQL expressions.
	Sortable map[string]string
	// DefaultSort is used when the request has no sort, e.g. "created_at.desc".
	DefaultSort string
	// Filters maps query parameter names to filters.
	Filters map[string]Filter
}

// SortField is one parsed entry of the sort parameter.
type SortField struct {
	Field string
	Desc  bool
}

func (s SortField) String() string {
	if s.Desc {
		return s.Field + ".desc"
	}
	return s.Field + ".asc"
}

// Params is a parsed and validated list request.
type Params struct {
	Page    int
	PerPage int
	Sort    []SortField
	Filters map[string]string

	spec   Spec
	values map[string]interface{}
}

// State is the normalized request echoed back to the client.
type State struct {
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
	Sort    string            `json:"sort,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

// Parse validates query values against spec.
func Parse(q url.Values, spec Spec) (Params, error) {
	p := Params{
		Page:    1,
		PerPage: DefaultPerPage,
		Filters: make(map[string]string),
		spec:    spec,
		values:  make(map[string]interface{}),
	}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = min(v, MaxPage)
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil {
		p.PerPage = clamp(v, 1, MaxPerPage)
	}

	rawSort := strings.TrimSpace(q.Get("sort"))
	if rawSort == "" {
		rawSort = spec.DefaultSort
	}
	if rawSort != "" {
		fields, err := parseSort(rawSort, spec.Sortable)
		if err != nil {
			return Params{}, err
		}
		p.Sort = fields
	}

	for key, f := range spec.Filters {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		val, norm, err := parseFilterValue(f.Kind, raw)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, key, err)
		}
		if norm == "" {
			continue
		}
		p.Filters[key] = norm
		p.values[key] = val
	}

	return p, nil
}

func parseSort(raw string, sortable map[string]string) ([]SortField, error) {
	var fields []SortField
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, dir, _ := strings.Cut(part, ".")
		if _, ok := sortable[name]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, name)
		}
		var desc bool
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidSort, dir)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, SortField{Field: name, Desc: desc})
	}
	return fields, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func parseFilterValue(kind FilterKind, raw string) (interface{}, string, error) {
	switch kind {
	case UUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, "", err
		}
		return id, id.String(), nil
	case Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, "", err
		}
		return n, strconv.Itoa(n), nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, "", err
		}
		return b, strconv.FormatBool(b), nil
	case In:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, strings.Join(items, ","), nil
	case Search:
		return likeEscaper.Replace(raw), raw, nil
	case DateFrom:
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, "", err
		}
		return d, d.Format(dateLayout), nil
	case DateTo:
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, "", err
		}
		// Inclusive upper bound: everything before the next day.
		return d.AddDate(0, 0, 1), d.Format(dateLayout), nil
	}
	return raw, raw, nil
}

// Conditions returns the filter predicates and their args, numbering
// placeholders from startArg. Filters are emitted in key order.
func (p Params) Conditions(startArg int) ([]string, []interface{}) {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conds []string
	var args []interface{}
	n := startArg
	for _, key := range keys {
		f := p.spec.Filters[key]
		if len(f.Columns) == 0 {
			continue
		}
		col := f.Columns[0]
		ph := "$" + strconv.Itoa(n)

		switch f.Kind {
		case In:
			conds = append(conds, col+" = ANY("+ph+")")
		case Search:
			ors := make([]string, len(f.Columns))
			for i, c := range f.Columns {
				ors[i] = c + " ILIKE '%' || " + ph + " || '%'"
			}
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		case DateFrom:
			conds = append(conds, col+" >= "+ph)
		case DateTo:
			conds = append(conds, col+" < "+ph)
		default:
			conds = append(conds, col+" = "+ph)
		}
		args = append(args, p.values[key])
		n++
	}
	return conds, args
}

// Where returns a WHERE clause combining extra (argument-free) predicates
// with the filters, or an empty string when there is nothing to filter.
func (p Params) Where(startArg int, extra ...string) (string, []interface{}) {
	conds, args := p.Conditions(startArg)
	conds = append(append([]string{}, extra...), conds...)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// OrderBy returns the ORDER BY clause, or an empty string when unsorted.
func (p Params) OrderBy() string {
	if len(p.Sort) == 0 {
		return ""
	}
	parts := make([]string, len(p.Sort))
	for i, s := range p.Sort {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts[i] = p.spec.Sortable[s.Field] + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// Offset returns the row offset of the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// LimitOffset returns the LIMIT/OFFSET clause using placeholders nextArg
// and nextArg+1.
func (p Params) LimitOffset(nextArg int) (string, []interface{}) {
	clause := fmt.Sprintf(" LIMIT $%d OFFSET $%d", nextArg, nextArg+1)
	return clause, []interface{}{p.PerPage, p.Offset()}
}

// SortString returns the normalized sort parameter.
func (p Params) SortString() string {
	parts := make([]string, len(p.Sort))
	for i, s := range p.Sort {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// State returns the normalized request.
func (p Params) State() State {
	st := State{Page: p.Page, PerPage: p.PerPage, Sort: p.SortString()}
	if len(p.Filters) > 0 {
		st.Filters = p.Filters
	}
	return st
}

// Pagination builds the response pagination block for total matching rows.
func (p Params) Pagination(total int) *response.Pagination {
	st := p.State()
	return &response.Pagination{
		Page:       st.Page,
		PerPage:    st.PerPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(p.PerPage))),
		Sort:       st.Sort,
		Filters:    st.Filters,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
