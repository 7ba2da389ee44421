// Package fieldmap declares the bijection between RESO field names exposed
// over OData and the backend column names they are stored under, per
// spec.md §3.2: every exposed name maps to exactly one backend column, and
// no two names share a column. One declaration site derives both the
// forward and reverse map, so they cannot drift apart (spec.md §9 design
// note).
package fieldmap

import "fmt"

// Field declares one RESO-exposed name and the backend column it reads
// from, in declaration order. Order matters: it is the default $select
// projection order and supplies the deterministic default $orderby column.
type Field struct {
	Name   string // RESO Data Dictionary name, e.g. "ListingKey"
	Column string // physical backend column, e.g. "IDSMLS"
}

// Map is a resource's field whitelist: an ordered list of Field plus the
// forward/reverse lookup built from it.
type Map struct {
	Table    string
	KeyField string
	fields   []Field
	toColumn map[string]string
	toField  map[string]string
}

// New builds a Map from an ordered field declaration, panicking if the
// declaration violates the bijection invariant or omits the key field —
// these are programming errors caught at package init, never at request
// time.
func New(table, keyField string, fields []Field) *Map {
	m := &Map{
		Table:    table,
		KeyField: keyField,
		fields:   fields,
		toColumn: make(map[string]string, len(fields)),
		toField:  make(map[string]string, len(fields)),
	}

	foundKey := false
	for _, f := range fields {
		if _, dup := m.toColumn[f.Name]; dup {
			panic(fmt.Sprintf("fieldmap: duplicate RESO name %q", f.Name))
		}
		if existing, dup := m.toField[f.Column]; dup {
			panic(fmt.Sprintf("fieldmap: column %q already mapped from %q, cannot also map from %q", f.Column, existing, f.Name))
		}
		m.toColumn[f.Name] = f.Column
		m.toField[f.Column] = f.Name
		if f.Name == keyField {
			foundKey = true
		}
	}
	if !foundKey {
		panic(fmt.Sprintf("fieldmap: key field %q not declared", keyField))
	}

	return m
}

// Column returns the backend column for a RESO name, and whether it exists.
func (m *Map) Column(name string) (string, bool) {
	col, ok := m.toColumn[name]
	return col, ok
}

// Field returns the RESO name for a backend column, and whether it exists.
func (m *Map) Field(column string) (string, bool) {
	name, ok := m.toField[column]
	return name, ok
}

// KeyColumn returns the backend column backing the key field.
func (m *Map) KeyColumn() string {
	col, _ := m.toColumn[m.KeyField]
	return col
}

// Fields returns the declared fields in declaration order.
func (m *Map) Fields() []Field {
	return m.fields
}

// DefaultOrderColumn is the backend column used for ORDER BY when the
// client supplies none (spec.md §3.4 invariant 3: the first column of the
// field map, in declaration order).
func (m *Map) DefaultOrderColumn() string {
	if len(m.fields) == 0 {
		return ""
	}
	return m.fields[0].Column
}

// AllColumns returns every backend column in declaration order, used as
// the default $select projection.
func (m *Map) AllColumns() []string {
	cols := make([]string, len(m.fields))
	for i, f := range m.fields {
		cols[i] = f.Column
	}
	return cols
}
