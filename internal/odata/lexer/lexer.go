// Package lexer tokenizes an OData $filter string into a typed token
// stream, per spec.md §4.1. It is pure: no external state, no I/O, and it
// fails without side effects.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the syntactic category of a Token.
type Kind int

const (
	Identifier Kind = iota
	Operator
	Logical
	Function
	String
	Number
	Datetime
	Literal
	Paren
	Comma
)

// Token is one lexical unit of a $filter expression.
type Token struct {
	Kind  Kind
	Value string // original/normalized text; numeric literals keep their decimal text too
	Num   float64
}

var operators = map[string]bool{"eq": true, "ne": true, "gt": true, "ge": true, "lt": true, "le": true}
var logicals = map[string]bool{"and": true, "or": true, "not": true}
var functions = map[string]bool{"contains": true, "startswith": true, "endswith": true}
var literals = map[string]bool{"null": true, "true": true, "false": true}

// Lex tokenizes input, returning a parse error on any malformed sequence.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	runes := []rune(input)
	i := 0
	n := len(runes)

	for i < n {
		c := runes[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '\'':
			val, next, err := lexString(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Kind: String, Value: val})
			i = next

		case c == '(':
			tokens = append(tokens, Token{Kind: Paren, Value: "("})
			i++

		case c == ')':
			tokens = append(tokens, Token{Kind: Paren, Value: ")"})
			i++

		case c == ',':
			tokens = append(tokens, Token{Kind: Comma, Value: ","})
			i++

		case isDigit(c) || c == '.' || c == '-':
			tok, next, err := lexNumberOrDatetime(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next

		case isIdentStart(c):
			word, next := lexWord(runes, i)
			tokens = append(tokens, classifyWord(word))
			i = next

		default:
			return nil, fmt.Errorf("Unexpected character in filter: %q", string(c))
		}
	}

	return tokens, nil
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isIdentStart(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}

func lexString(runes []rune, start int) (string, int, error) {
	i := start + 1
	var b strings.Builder
	n := len(runes)

	for i < n {
		if runes[i] == '\'' {
			if i+1 < n && runes[i+1] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			return b.String(), i + 1, nil
		}
		b.WriteRune(runes[i])
		i++
	}

	return "", 0, fmt.Errorf("unterminated string literal in filter")
}

// lexNumberOrDatetime consumes either a number or, if the head matches
// YYYY-MM-DD, a datetime literal kept verbatim for the emitted parameter.
func lexNumberOrDatetime(runes []rune, start int) (Token, int, error) {
	n := len(runes)

	if looksLikeDate(runes, start) {
		i := start
		for i < n && isDatetimeChar(runes[i]) {
			i++
		}
		return Token{Kind: Datetime, Value: string(runes[start:i])}, i, nil
	}

	i := start
	for i < n && isNumberChar(runes[i]) {
		i++
	}
	text := string(runes[start:i])
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, 0, fmt.Errorf("invalid numeric literal %q in filter", text)
	}
	return Token{Kind: Number, Value: text, Num: val}, i, nil
}

func looksLikeDate(runes []rune, start int) bool {
	n := len(runes)
	if start+10 > n {
		return false
	}
	for idx, want := range []bool{true, true, true, true, false, true, true, false, true, true} {
		c := runes[start+idx]
		if want && !isDigit(c) {
			return false
		}
		if !want && c != '-' {
			return false
		}
	}
	return true
}

func isDatetimeChar(c rune) bool {
	return isDigit(c) || c == '-' || c == ':' || c == '.' || c == 'T' || c == 'Z' || c == '+'
}

func isNumberChar(c rune) bool {
	return isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

func lexWord(runes []rune, start int) (string, int) {
	i := start
	n := len(runes)
	for i < n && isIdentPart(runes[i]) {
		i++
	}
	return string(runes[start:i]), i
}

func classifyWord(word string) Token {
	lower := strings.ToLower(word)
	switch {
	case operators[lower]:
		return Token{Kind: Operator, Value: lower}
	case logicals[lower]:
		return Token{Kind: Logical, Value: lower}
	case functions[lower]:
		return Token{Kind: Function, Value: lower}
	case literals[lower]:
		return Token{Kind: Literal, Value: lower}
	default:
		return Token{Kind: Identifier, Value: word}
	}
}
