package resources

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	t.Run("should render set and key in its message", func(t *testing.T) {
		err := &NotFoundError{Set: "Property", Key: "12345"}
		assert.Equal(t, "Property with key '12345' not found", err.Error())
	})
}

func TestAllowedExpansions(t *testing.T) {
	t.Run("should index navigations by name", func(t *testing.T) {
		allowed := allowedExpansions(PropertyNavigations)
		assert.True(t, allowed["ListAgent"])
		assert.True(t, allowed["ListOffice"])
		assert.False(t, allowed["Bogus"])
	})

	t.Run("should be empty for a spec with no navigations", func(t *testing.T) {
		allowed := allowedExpansions(MemberSpec.Navigations)
		assert.Empty(t, allowed)
	})
}

func TestContextURL(t *testing.T) {
	t.Run("should build a collection context URL", func(t *testing.T) {
		assert.Equal(t, "https://host/odata/$metadata#Property", contextURL("https://host/odata", "Property", false))
	})

	t.Run("should build an entity context URL with the $entity suffix", func(t *testing.T) {
		assert.Equal(t, "https://host/odata/$metadata#Property/$entity", contextURL("https://host/odata", "Property", true))
	})

	t.Run("should tolerate a trailing slash on the service root", func(t *testing.T) {
		assert.Equal(t, "https://host/odata/$metadata#Property", contextURL("https://host/odata/", "Property", false))
	})
}

func TestToArgs(t *testing.T) {
	t.Run("should convert every param into a sql.NamedArg", func(t *testing.T) {
		args := toArgs(map[string]any{"filter0": "Austin"})
		assert.Len(t, args, 1)
		named, ok := args[0].(sql.NamedArg)
		assert.True(t, ok)
		assert.Equal(t, "filter0", named.Name)
		assert.Equal(t, "Austin", named.Value)
	})

	t.Run("should return an empty slice for no params", func(t *testing.T) {
		assert.Empty(t, toArgs(map[string]any{}))
	})
}

func TestCountCacheKeyFor(t *testing.T) {
	t.Run("should produce the same key regardless of param map iteration order", func(t *testing.T) {
		a := countCacheKeyFor("SELECT COUNT(*) FROM PROPERTY WHERE CITY = @filter0 AND STATUS = @filter1",
			map[string]any{"filter0": "Austin", "filter1": "Active"})
		b := countCacheKeyFor("SELECT COUNT(*) FROM PROPERTY WHERE CITY = @filter0 AND STATUS = @filter1",
			map[string]any{"filter1": "Active", "filter0": "Austin"})
		assert.Equal(t, a, b)
	})

	t.Run("should differ when the bound values differ", func(t *testing.T) {
		a := countCacheKeyFor("SELECT COUNT(*) FROM PROPERTY WHERE CITY = @filter0", map[string]any{"filter0": "Austin"})
		b := countCacheKeyFor("SELECT COUNT(*) FROM PROPERTY WHERE CITY = @filter0", map[string]any{"filter0": "Dallas"})
		assert.NotEqual(t, a, b)
	})

	t.Run("should differ when the SQL differs", func(t *testing.T) {
		a := countCacheKeyFor("SELECT COUNT(*) FROM PROPERTY", map[string]any{})
		b := countCacheKeyFor("SELECT COUNT(*) FROM AGENT", map[string]any{})
		assert.NotEqual(t, a, b)
	})
}

type fakeCountCache struct {
	store map[string]int64
	sets  int
}

func newFakeCountCache() *fakeCountCache { return &fakeCountCache{store: make(map[string]int64)} }

func (f *fakeCountCache) Get(ctx context.Context, key string) (int64, bool) {
	v, ok := f.store[key]
	return v, ok
}

func (f *fakeCountCache) Set(ctx context.Context, key string, total int64) {
	f.store[key] = total
	f.sets++
}

func TestWithCountCache(t *testing.T) {
	t.Run("should install the cache on the driver", func(t *testing.T) {
		c := newFakeCountCache()
		d := NewDriver(nil, nil, WithCountCache(c))
		assert.Same(t, c, d.cache)
	})

	t.Run("should leave the cache nil when no option is given", func(t *testing.T) {
		d := NewDriver(nil, nil)
		assert.Nil(t, d.cache)
	})
}
