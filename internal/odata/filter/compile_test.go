package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rechat/reso-odata/internal/odata/fieldmap"
	"github.com/rechat/reso-odata/internal/odata/lexer"
)

var testMap = fieldmap.New("PROPERTY", "ListingKey", []fieldmap.Field{
	{Name: "ListingKey", Column: "IDSMLS"},
	{Name: "ListPrice", Column: "IDCLISTPRICE"},
	{Name: "City", Column: "CITY"},
})

func compile(t *testing.T, raw string) *Compiled {
	tokens, err := lexer.Lex(raw)
	assert.NoError(t, err)
	compiled, err := Compile(tokens, testMap)
	assert.NoError(t, err)
	return compiled
}

func TestCompile(t *testing.T) {
	t.Run("should compile a simple comparison with a named parameter", func(t *testing.T) {
		c := compile(t, "City eq 'Austin'")
		assert.Equal(t, "CITY = @filter0", c.SQL)
		assert.Equal(t, map[string]any{"filter0": "Austin"}, c.Params)
	})

	t.Run("should compile a numeric comparison", func(t *testing.T) {
		c := compile(t, "ListPrice gt 250000")
		assert.Equal(t, "IDCLISTPRICE > @filter0", c.SQL)
		assert.Equal(t, map[string]any{"filter0": float64(250000)}, c.Params)
	})

	t.Run("should compile an and conjunction with two parameters", func(t *testing.T) {
		c := compile(t, "ListPrice gt 100000 and City eq 'Austin'")
		assert.Equal(t, "IDCLISTPRICE > @filter0 AND CITY = @filter1", c.SQL)
		assert.Equal(t, map[string]any{"filter0": float64(100000), "filter1": "Austin"}, c.Params)
	})

	t.Run("should compile a parenthesized group", func(t *testing.T) {
		c := compile(t, "(City eq 'Austin')")
		assert.Equal(t, "(CITY = @filter0)", c.SQL)
	})

	t.Run("should compile a not prefix", func(t *testing.T) {
		c := compile(t, "not (City eq 'Austin')")
		assert.Equal(t, "NOT (CITY = @filter0)", c.SQL)
	})

	t.Run("should compile contains() to a wrapped LIKE pattern", func(t *testing.T) {
		c := compile(t, "contains(City,'Aus')")
		assert.Equal(t, "CITY LIKE @filter0", c.SQL)
		assert.Equal(t, map[string]any{"filter0": "%Aus%"}, c.Params)
	})

	t.Run("should compile startswith() to a trailing-wildcard pattern", func(t *testing.T) {
		c := compile(t, "startswith(City,'Aus')")
		assert.Equal(t, map[string]any{"filter0": "Aus%"}, c.Params)
	})

	t.Run("should compile endswith() to a leading-wildcard pattern", func(t *testing.T) {
		c := compile(t, "endswith(City,'tin')")
		assert.Equal(t, map[string]any{"filter0": "%tin"}, c.Params)
	})

	t.Run("should compile a null comparison without a parameter", func(t *testing.T) {
		c := compile(t, "City eq null")
		assert.Equal(t, "CITY = NULL", c.SQL)
		assert.Empty(t, c.Params)
	})

	t.Run("should reject an unknown field", func(t *testing.T) {
		tokens, err := lexer.Lex("Bogus eq 'x'")
		assert.NoError(t, err)
		_, err = Compile(tokens, testMap)
		assert.Error(t, err)
	})

	t.Run("should reject trailing tokens after a complete expression", func(t *testing.T) {
		tokens, err := lexer.Lex("City eq 'Austin' 'trailing'")
		assert.NoError(t, err)
		_, err = Compile(tokens, testMap)
		assert.Error(t, err)
	})

	t.Run("should reject a group missing its closing parenthesis", func(t *testing.T) {
		tokens, err := lexer.Lex("(City eq 'Austin'")
		assert.NoError(t, err)
		_, err = Compile(tokens, testMap)
		assert.Error(t, err)
	})

	t.Run("should never emit a user literal directly into the SQL text", func(t *testing.T) {
		c := compile(t, "City eq 'DROP TABLE PROPERTY'")
		assert.NotContains(t, c.SQL, "DROP TABLE")
		assert.Equal(t, "DROP TABLE PROPERTY", c.Params["filter0"])
	})
}
