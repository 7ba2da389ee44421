package querybuilder

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rechat/reso-odata/internal/odata/fieldmap"
)

var testMap = fieldmap.New("PROPERTY", "ListingKey", []fieldmap.Field{
	{Name: "ListingKey", Column: "IDSMLS"},
	{Name: "ListPrice", Column: "IDCLISTPRICE"},
	{Name: "City", Column: "CITY"},
})

func TestBuild(t *testing.T) {
	t.Run("should build a plain paginated query with the default order column", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{},
		})
		assert.NoError(t, err)
		assert.Equal(t, 100, plan.Top)
		assert.Equal(t, 0, plan.Skip)
		assert.Equal(t,
			"SELECT IDSMLS, IDCLISTPRICE, CITY FROM PROPERTY ORDER BY IDSMLS ASC OFFSET 0 ROWS FETCH NEXT 100 ROWS ONLY",
			plan.DataSQL)
		assert.Empty(t, plan.CountSQL)
		assert.Nil(t, plan.NextLinkFunc)
	})

	t.Run("should clamp $top to the configured maximum", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{"$top": {"5000"}},
		})
		assert.NoError(t, err)
		assert.Equal(t, maxTop, plan.Top)
	})

	t.Run("should clamp $top to the configured minimum", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{"$top": {"0"}},
		})
		assert.NoError(t, err)
		assert.Equal(t, minTop, plan.Top)
	})

	t.Run("should compile $filter into the WHERE clause with a named parameter", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{"$filter": {"City eq 'Austin'"}},
		})
		assert.NoError(t, err)
		assert.Contains(t, plan.DataSQL, "WHERE CITY = @filter0")
		assert.Equal(t, "Austin", plan.Params["filter0"])
	})

	t.Run("should prefer a key-value lookup over $filter when both are set", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			KeyField: "ListingKey",
			KeyValue: "12345",
			Query:    url.Values{"$filter": {"City eq 'Austin'"}},
		})
		assert.NoError(t, err)
		assert.Contains(t, plan.DataSQL, "WHERE IDSMLS = @keyValue")
		assert.Equal(t, "12345", plan.Params["keyValue"])
		assert.NotContains(t, plan.Params, "filter0")
	})

	t.Run("should conjoin a base predicate with $filter", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{"$filter": {"City eq 'Austin'"}},
			BaseWhere: &Fragment{
				SQL:    "IDCLISTAGENTKEY = @agentKey",
				Params: map[string]any{"agentKey": "A1"},
			},
		})
		assert.NoError(t, err)
		assert.Contains(t, plan.DataSQL, "(IDCLISTAGENTKEY = @agentKey) AND (CITY = @filter0)")
		assert.Equal(t, "A1", plan.Params["agentKey"])
	})

	t.Run("should build a count query sharing the same WHERE clause", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{"$filter": {"City eq 'Austin'"}, "$count": {"true"}},
		})
		assert.NoError(t, err)
		assert.Equal(t, "SELECT COUNT(*) AS total FROM PROPERTY WHERE CITY = @filter0", plan.CountSQL)
		assert.True(t, plan.Count)
	})

	t.Run("should reject an unknown $select field", func(t *testing.T) {
		_, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{"$select": {"Bogus"}},
		})
		assert.Error(t, err)
	})

	t.Run("should build a next-link that re-propagates query options and advances skip", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{"$filter": {"City eq 'Austin'"}, "$top": {"10"}},
			BaseURL:  "https://example.com/odata/Property",
		})
		assert.NoError(t, err)
		assert.NotNil(t, plan.NextLinkFunc)

		link := plan.NextLinkFunc(25)
		assert.Contains(t, link, "https://example.com/odata/Property?")
		parsed, err := url.Parse(link)
		assert.NoError(t, err)
		assert.Equal(t, "10", parsed.Query().Get("$top"))
		assert.Equal(t, "10", parsed.Query().Get("$skip"))
		assert.Equal(t, "City eq 'Austin'", parsed.Query().Get("$filter"))
	})

	t.Run("should return an empty next-link once the last page is reached", func(t *testing.T) {
		plan, err := Build(Input{
			Table:    "PROPERTY",
			FieldMap: testMap,
			Query:    url.Values{"$top": {"10"}, "$skip": {"20"}},
			BaseURL:  "https://example.com/odata/Property",
		})
		assert.NoError(t, err)
		assert.Empty(t, plan.NextLinkFunc(25))
	})
}
