// Package filter walks a lexer.Token stream into a small AST and then
// serializes it to a parameterized SQL WHERE fragment, per spec.md §4.2 and
// the AST-shaped "cleaner port" described in spec.md §9 — grounded on the
// sum-type predicate tree (binaryOp/logicalOp/unaryOp) used for query
// compilation in the reference query-compiler material.
package filter

// Node is any node of a compiled filter expression.
type Node interface{}

// Compare is `<field> <op> <literal>`, e.g. City eq 'LA'.
type Compare struct {
	Field   string // RESO field name, already whitelist-validated
	Op      string // eq ne gt ge lt le
	Literal Literal
}

// Call is `<func>(<field>, <string>)`, e.g. contains(City, 'LA').
type Call struct {
	Func  string // contains startswith endswith
	Field string
	Value string
}

// Binary is `<lhs> <and|or> <rhs>`.
type Binary struct {
	Op  string // and or
	LHS Node
	RHS Node
}

// Not is `not <operand>`.
type Not struct {
	Operand Node
}

// Group is a caller-supplied parenthesized sub-expression.
type Group struct {
	Inner Node
}

// LiteralKind distinguishes how a literal value should be bound.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralDatetime
	LiteralNull
	LiteralBool
)

// Literal is a compare operand: a parameterized value, or one of the bare
// SQL keywords (NULL/1/0) for null/true/false.
type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
	Bool bool
}
