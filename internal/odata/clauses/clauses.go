// Package clauses parses the non-$filter OData query options — $select,
// $orderby, $expand — against a resource's fieldmap.Map, per spec.md §4.3.
package clauses

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rechat/reso-odata/internal/odata/fieldmap"
)

// OrderTerm is one $orderby term: a backend column plus direction.
type OrderTerm struct {
	Column string
	Desc   bool
}

// ParseSelect splits a comma-separated $select list and resolves each RESO
// name to its backend column, in the order given. An empty or absent raw
// value selects every declared field (spec.md §4.3 default).
func ParseSelect(raw string, fm *fieldmap.Map) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fm.AllColumns(), nil
	}

	parts := strings.Split(raw, ",")
	cols := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		col, ok := fm.Column(name)
		if !ok {
			return nil, fmt.Errorf("Invalid field in $select: %s", name)
		}
		cols = append(cols, col)
	}

	if len(cols) == 0 {
		return fm.AllColumns(), nil
	}
	return cols, nil
}

// ParseOrderBy splits a comma-separated $orderby list of "<field> [asc|desc]"
// terms and resolves each field to its backend column.
func ParseOrderBy(raw string, fm *fieldmap.Map) ([]OrderTerm, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	terms := make([]OrderTerm, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 2 {
			return nil, fmt.Errorf("Invalid field in $orderby: %s", part)
		}

		col, ok := fm.Column(fields[0])
		if !ok {
			return nil, fmt.Errorf("Unknown field in $orderby: %s", fields[0])
		}

		desc := false
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
				desc = false
			case "desc":
				desc = true
			default:
				return nil, fmt.Errorf("Invalid field in $orderby: %s", part)
			}
		}

		terms = append(terms, OrderTerm{Column: col, Desc: desc})
	}

	return terms, nil
}

// ParseExpand splits a comma-separated $expand list and validates each name
// against a resource's allowed navigation properties.
func ParseExpand(raw string, allowed map[string]bool) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if !allowed[name] {
			return nil, fmt.Errorf("Invalid $expand: %s. Allowed: %s", name, strings.Join(allowedNames(allowed), ", "))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names, nil
}

func allowedNames(allowed map[string]bool) []string {
	names := make([]string, 0, len(allowed))
	for name := range allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
