// Package querybuilder combines the filter compiler (C2) and clause parsers
// (C3) with pagination, base predicates, and key lookup into a runnable SQL
// query plan, per spec.md §4.4.
package querybuilder

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rechat/reso-odata/internal/odata/clauses"
	"github.com/rechat/reso-odata/internal/odata/fieldmap"
	"github.com/rechat/reso-odata/internal/odata/filter"
	"github.com/rechat/reso-odata/internal/odata/lexer"
)

const (
	defaultTop = 100
	minTop     = 1
	maxTop     = 1000
)

// Fragment is a WHERE-compatible SQL fragment with its bound parameters.
type Fragment struct {
	SQL    string
	Params map[string]any
}

// Input collects everything the builder needs to produce a Plan.
type Input struct {
	Table     string
	FieldMap  *fieldmap.Map
	Query     url.Values // raw OData query options, e.g. from the request URL
	KeyField  string
	KeyValue  any    // if set, wins over $filter
	BaseURL   string // if set, enables the next-link closure
	BaseWhere *Fragment
}

// Plan is the fully-resolved SQL for a list/get operation.
type Plan struct {
	DataSQL      string
	CountSQL     string // empty unless $count=true
	Params       map[string]any
	Top          int
	Skip         int
	Count        bool
	NextLinkFunc func(total int64) string // nil unless BaseURL was given
}

// Build assembles a Plan from Input, validating $select/$filter/$orderby
// against in.FieldMap.
func Build(in Input) (*Plan, error) {
	top := clamp(parseIntDefault(in.Query.Get("$top"), defaultTop), minTop, maxTop)
	skip := maxInt(parseIntDefault(in.Query.Get("$skip"), 0), 0)
	count := in.Query.Get("$count") == "true"

	cols, err := clauses.ParseSelect(in.Query.Get("$select"), in.FieldMap)
	if err != nil {
		return nil, err
	}

	where, params, err := buildWhere(in)
	if err != nil {
		return nil, err
	}

	orderClause, err := buildOrderBy(in.Query.Get("$orderby"), in.FieldMap)
	if err != nil {
		return nil, err
	}

	selectList := strings.Join(cols, ", ")
	dataSQL := fmt.Sprintf("SELECT %s FROM %s%s %s OFFSET %d ROWS FETCH NEXT %d ROWS ONLY",
		selectList, in.Table, whereClauseText(where), orderClause, skip, top)

	plan := &Plan{
		DataSQL: dataSQL,
		Params:  params,
		Top:     top,
		Skip:    skip,
		Count:   count,
	}

	if count {
		plan.CountSQL = fmt.Sprintf("SELECT COUNT(*) AS total FROM %s%s", in.Table, whereClauseText(where))
	}

	if in.BaseURL != "" {
		plan.NextLinkFunc = nextLinkFunc(in.BaseURL, in.Query, top, skip)
	}

	return plan, nil
}

func buildWhere(in Input) (string, map[string]any, error) {
	var parts []string
	params := make(map[string]any)

	if in.BaseWhere != nil && in.BaseWhere.SQL != "" {
		parts = append(parts, in.BaseWhere.SQL)
		for k, v := range in.BaseWhere.Params {
			params[k] = v
		}
	}

	switch {
	case in.KeyValue != nil:
		col, _ := in.FieldMap.Column(in.KeyField)
		if col == "" {
			col = in.FieldMap.KeyColumn()
		}
		parts = append(parts, fmt.Sprintf("%s = @keyValue", col))
		params["keyValue"] = in.KeyValue

	case in.Query.Get("$filter") != "":
		tokens, err := lexer.Lex(in.Query.Get("$filter"))
		if err != nil {
			return "", nil, err
		}
		compiled, err := filter.Compile(tokens, in.FieldMap)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, compiled.SQL)
		for k, v := range compiled.Params {
			params[k] = v
		}
	}

	if len(parts) == 0 {
		return "", params, nil
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}

	joined := make([]string, len(parts))
	for i, p := range parts {
		joined[i] = "(" + p + ")"
	}
	return strings.Join(joined, " AND "), params, nil
}

func whereClauseText(where string) string {
	if where == "" {
		return ""
	}
	return " WHERE " + where
}

func buildOrderBy(raw string, fm *fieldmap.Map) (string, error) {
	terms, err := clauses.ParseOrderBy(raw, fm)
	if err != nil {
		return "", err
	}
	if len(terms) == 0 {
		return fmt.Sprintf("ORDER BY %s ASC", fm.DefaultOrderColumn()), nil
	}

	parts := make([]string, len(terms))
	for i, t := range terms {
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s %s", t.Column, dir)
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}

// nextLinkFunc returns a closure producing the OData next-link, re-propagating
// $select, $filter, $orderby, $count from the original query (spec.md §4.4.7).
func nextLinkFunc(baseURL string, query url.Values, top, skip int) func(total int64) string {
	return func(total int64) string {
		if int64(skip+top) >= total {
			return ""
		}

		v := url.Values{}
		v.Set("$top", strconv.Itoa(top))
		v.Set("$skip", strconv.Itoa(skip+top))
		for _, opt := range []string{"$select", "$filter", "$orderby", "$count"} {
			if val := query.Get(opt); val != "" {
				v.Set(opt, val)
			}
		}

		return baseURL + "?" + v.Encode()
	}
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
