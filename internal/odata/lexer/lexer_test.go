package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLex(t *testing.T) {
	t.Run("should tokenize a simple comparison", func(t *testing.T) {
		tokens, err := Lex("City eq 'Austin'")
		assert.NoError(t, err)
		assert.Equal(t, []Token{
			{Kind: Identifier, Value: "City"},
			{Kind: Operator, Value: "eq"},
			{Kind: String, Value: "Austin"},
		}, tokens)
	})

	t.Run("should lowercase operators and logicals but preserve identifier case", func(t *testing.T) {
		tokens, err := Lex("ListPrice GE 100000 AND City eq 'Austin'")
		assert.NoError(t, err)
		assert.Equal(t, Identifier, tokens[0].Kind)
		assert.Equal(t, "ListPrice", tokens[0].Value)
		assert.Equal(t, Operator, tokens[1].Kind)
		assert.Equal(t, "ge", tokens[1].Value)
		assert.Equal(t, Logical, tokens[3].Kind)
		assert.Equal(t, "and", tokens[3].Value)
	})

	t.Run("should tokenize a function call", func(t *testing.T) {
		tokens, err := Lex("contains(City,'Austin')")
		assert.NoError(t, err)
		assert.Equal(t, []Token{
			{Kind: Function, Value: "contains"},
			{Kind: Paren, Value: "("},
			{Kind: Identifier, Value: "City"},
			{Kind: Comma, Value: ","},
			{Kind: String, Value: "Austin"},
			{Kind: Paren, Value: ")"},
		}, tokens)
	})

	t.Run("should unescape doubled single quotes inside a string literal", func(t *testing.T) {
		tokens, err := Lex("City eq 'O''Fallon'")
		assert.NoError(t, err)
		assert.Equal(t, "O'Fallon", tokens[2].Value)
	})

	t.Run("should tokenize a numeric literal with its float value", func(t *testing.T) {
		tokens, err := Lex("ListPrice gt 250000")
		assert.NoError(t, err)
		assert.Equal(t, Number, tokens[2].Kind)
		assert.Equal(t, "250000", tokens[2].Value)
		assert.Equal(t, float64(250000), tokens[2].Num)
	})

	t.Run("should tokenize a datetime literal verbatim", func(t *testing.T) {
		tokens, err := Lex("ModificationTimestamp ge 2024-01-01T00:00:00Z")
		assert.NoError(t, err)
		assert.Equal(t, Datetime, tokens[2].Kind)
		assert.Equal(t, "2024-01-01T00:00:00Z", tokens[2].Value)
	})

	t.Run("should classify null/true/false as literals", func(t *testing.T) {
		tokens, err := Lex("City eq null")
		assert.NoError(t, err)
		assert.Equal(t, Literal, tokens[2].Kind)
		assert.Equal(t, "null", tokens[2].Value)
	})

	t.Run("should tokenize a not prefix and parenthesized group", func(t *testing.T) {
		tokens, err := Lex("not (City eq 'Austin')")
		assert.NoError(t, err)
		assert.Equal(t, []Token{
			{Kind: Logical, Value: "not"},
			{Kind: Paren, Value: "("},
			{Kind: Identifier, Value: "City"},
			{Kind: Operator, Value: "eq"},
			{Kind: String, Value: "Austin"},
			{Kind: Paren, Value: ")"},
		}, tokens)
	})

	t.Run("should error on an unterminated string literal", func(t *testing.T) {
		_, err := Lex("City eq 'Austin")
		assert.Error(t, err)
	})

	t.Run("should error on an unexpected character", func(t *testing.T) {
		_, err := Lex("City eq #Austin")
		assert.Error(t, err)
	})

	t.Run("should skip whitespace between tokens", func(t *testing.T) {
		tokens, err := Lex("  City   eq\t'Austin'\n")
		assert.NoError(t, err)
		assert.Len(t, tokens, 3)
	})
}
