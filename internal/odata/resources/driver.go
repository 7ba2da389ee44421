package resources

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"golang.org/x/sync/errgroup"

	"github.com/rechat/reso-odata/internal/odata/clauses"
	"github.com/rechat/reso-odata/internal/odata/fieldmap"
	"github.com/rechat/reso-odata/internal/odata/keycodec"
	"github.com/rechat/reso-odata/internal/odata/querybuilder"
	"github.com/rechat/reso-odata/internal/platform/database"
)

// Spec describes one exposed entity set's table, field map, and navigation
// properties, per spec.md §3.1.
type Spec struct {
	Set         string // OData entity set name, e.g. "Property"
	Table       string
	FieldMap    *fieldmap.Map
	Navigations []Navigation
	IsProperty  bool
}

var PropertySpec = Spec{Set: "Property", Table: "PROPERTY", FieldMap: PropertyMap, Navigations: PropertyNavigations, IsProperty: true}
var MemberSpec = Spec{Set: "Member", Table: "AGENT", FieldMap: MemberMap}
var OfficeSpec = Spec{Set: "Office", Table: "OFFICE", FieldMap: OfficeMap}

// NotFoundError is returned by Get on a key-lookup miss. The HTTP layer maps
// it to the 404 envelope (spec.md §4.5 "get" step 4, §7).
type NotFoundError struct {
	Set string
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key '%s' not found", e.Set, e.Key)
}

// CountCache memoizes a list query's total row count by its fully-resolved
// SQL+params, so repeated pagination through the same filter doesn't re-run
// COUNT(*) on every page. Satisfied by cache.TotalCountCache.
type CountCache interface {
	Get(ctx context.Context, key string) (int64, bool)
	Set(ctx context.Context, key string, total int64)
}

// Driver orchestrates list/get requests for any Spec against a database.DB,
// per spec.md §4.5.
type Driver struct {
	db    database.DB
	keys  *keycodec.Store
	cache CountCache
}

func NewDriver(db database.DB, keys *keycodec.Store, opts ...DriverOption) *Driver {
	d := &Driver{db: db, keys: keys}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type DriverOption func(*Driver)

// WithCountCache enables COUNT(*) memoization for list queries. Omit it (or
// pass a nil cache) to run the count query on every request, which is
// exactly the behavior a cache miss produces.
func WithCountCache(c CountCache) DriverOption {
	return func(d *Driver) { d.cache = c }
}

func allowedExpansions(navs []Navigation) map[string]bool {
	allowed := make(map[string]bool, len(navs))
	for _, n := range navs {
		allowed[n.Name] = true
	}
	return allowed
}

// List runs steps 1-7 of spec.md §4.5 "list". odataRoot is the service
// root, e.g. "https://host/odata" (no trailing slash), used to build both
// the envelope context and the next-link.
func (d *Driver) List(ctx context.Context, spec Spec, query url.Values, odataRoot string) (map[string]any, error) {
	expandNames, err := clauses.ParseExpand(query.Get("$expand"), allowedExpansions(spec.Navigations))
	if err != nil {
		return nil, err
	}

	plan, err := querybuilder.Build(querybuilder.Input{
		Table:    spec.Table,
		FieldMap: spec.FieldMap,
		Query:    query,
		KeyField: spec.FieldMap.KeyField,
		BaseURL:  odataRoot + "/" + spec.Set,
	})
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	var total int64
	var countCacheKey string
	countCacheHit := false

	if plan.Count && d.cache != nil {
		countCacheKey = countCacheKeyFor(plan.CountSQL, plan.Params)
		if cached, ok := d.cache.Get(ctx, countCacheKey); ok {
			total = cached
			countCacheHit = true
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = d.query(gctx, plan.DataSQL, plan.Params)
		return err
	})
	if plan.Count && !countCacheHit {
		g.Go(func() error {
			var err error
			total, err = d.count(gctx, plan.CountSQL, plan.Params)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if plan.Count && d.cache != nil && !countCacheHit {
		d.cache.Set(ctx, countCacheKey, total)
	}

	entities := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		entity, err := d.reshape(ctx, spec, row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if err := d.attachExpansions(ctx, spec, entities, expandNames); err != nil {
		return nil, err
	}

	envelope := map[string]any{
		"@odata.context": contextURL(odataRoot, spec.Set, false),
		"value":          entities,
	}
	if plan.Count {
		envelope["@odata.count"] = total
		if plan.NextLinkFunc != nil {
			if link := plan.NextLinkFunc(total); link != "" {
				envelope["@odata.nextLink"] = link
			}
		}
	}

	return envelope, nil
}

// Get runs steps 1-5 of spec.md §4.5 "get". odataRoot is the service root,
// e.g. "https://host/odata" (no trailing slash).
func (d *Driver) Get(ctx context.Context, spec Spec, rawKey string, query url.Values, odataRoot string) (map[string]any, error) {
	rawKey = strings.Trim(rawKey, "'")

	var keyValue any
	switch {
	case spec.IsProperty:
		backendKey, ok, err := d.keys.Decode(ctx, rawKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &NotFoundError{Set: spec.Set, Key: rawKey}
		}
		keyValue = backendKey
	default:
		if n, err := strconv.Atoi(rawKey); err == nil {
			keyValue = n
		} else {
			keyValue = rawKey
		}
	}

	plan, err := querybuilder.Build(querybuilder.Input{
		Table:    spec.Table,
		FieldMap: spec.FieldMap,
		Query:    query,
		KeyField: spec.FieldMap.KeyField,
		KeyValue: keyValue,
	})
	if err != nil {
		return nil, err
	}

	rows, err := d.query(ctx, plan.DataSQL, plan.Params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Set: spec.Set, Key: rawKey}
	}

	entity, err := d.reshape(ctx, spec, rows[0])
	if err != nil {
		return nil, err
	}

	expandNames, err := clauses.ParseExpand(query.Get("$expand"), allowedExpansions(spec.Navigations))
	if err != nil {
		return nil, err
	}
	if err := d.attachExpansions(ctx, spec, []map[string]any{entity}, expandNames); err != nil {
		return nil, err
	}

	entity["@odata.context"] = contextURL(odataRoot, spec.Set, true)
	return entity, nil
}

// reshape renames backend columns to RESO names (dropping unmapped columns)
// and applies Property-specific transforms: key encoding and photo parsing.
func (d *Driver) reshape(ctx context.Context, spec Spec, row map[string]any) (map[string]any, error) {
	entity := make(map[string]any, len(row))
	for col, val := range row {
		name, ok := spec.FieldMap.Field(col)
		if !ok {
			continue
		}
		entity[name] = val
	}

	if !spec.IsProperty {
		return entity, nil
	}

	rawKey := fmt.Sprint(entity["ListingKey"])
	encoded, err := d.keys.EncodeAndRemember(ctx, rawKey)
	if err != nil {
		return nil, err
	}
	entity["ListingKey"] = encoded

	var photoXML string
	if raw, ok := entity["PhotoXML"]; ok && raw != nil {
		photoXML = fmt.Sprint(raw)
	}
	delete(entity, "PhotoXML")
	entity["Media"] = ParsePhotoXML(photoXML, encoded)

	return entity, nil
}

// attachExpansions satisfies each requested $expand with one batched SELECT
// against the related table, per spec.md §4.5 step 6.
func (d *Driver) attachExpansions(ctx context.Context, spec Spec, entities []map[string]any, expandNames []string) error {
	if len(expandNames) == 0 {
		return nil
	}

	navByName := make(map[string]Navigation, len(spec.Navigations))
	for _, n := range spec.Navigations {
		navByName[n.Name] = n
	}

	for _, name := range expandNames {
		nav, ok := navByName[name]
		if !ok {
			continue
		}
		if err := d.attachOne(ctx, nav, entities); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) attachOne(ctx context.Context, nav Navigation, entities []map[string]any) error {
	keySet := make(map[any]bool)
	for _, e := range entities {
		v := e[nav.LocalField]
		if v == nil {
			continue
		}
		keySet[v] = true
	}
	if len(keySet) == 0 {
		return nil
	}

	keys := make([]any, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}

	placeholders := make([]string, len(keys))
	params := make(map[string]any, len(keys))
	for i, k := range keys {
		p := fmt.Sprintf("k%d", i)
		placeholders[i] = "@" + p
		params[p] = k
	}

	sqlText := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)",
		nav.TargetTable, nav.TargetColumn, strings.Join(placeholders, ", "))

	rows, err := d.query(ctx, sqlText, params)
	if err != nil {
		return err
	}

	byKey := make(map[string]map[string]any, len(rows))
	for _, row := range rows {
		target := make(map[string]any, len(row))
		for col, val := range row {
			name, ok := nav.TargetFieldMap.Field(col)
			if !ok {
				continue
			}
			target[name] = val
		}
		keyField, _ := nav.TargetFieldMap.Field(nav.TargetColumn)
		byKey[fmt.Sprint(target[keyField])] = target
	}

	for _, e := range entities {
		v := e[nav.LocalField]
		if v == nil {
			continue
		}
		if target, ok := byKey[fmt.Sprint(v)]; ok {
			e[nav.Name] = target
		}
	}

	return nil
}

// query and count surface every driver-level failure as a BackendError
// (spec.md §7), never the raw SQL driver error, so the client never sees
// backend schema/connection details.
func (d *Driver) query(ctx context.Context, sqlText string, params map[string]any) ([]map[string]any, error) {
	rows, err := d.db.QueryxContext(ctx, sqlText, toArgs(params)...)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "backend query failed")
	}
	defer rows.Close()

	var result []map[string]any
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "backend row scan failed")
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "backend query failed")
	}
	return result, nil
}

func (d *Driver) count(ctx context.Context, sqlText string, params map[string]any) (int64, error) {
	var total int64
	if err := d.db.GetContext(ctx, &total, sqlText, toArgs(params)...); err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "backend count query failed")
	}
	return total, nil
}

// countCacheKeyFor derives a stable cache key from a count query's SQL text
// and bound parameters, so two requests that resolve to the same WHERE
// clause share a cache entry regardless of map iteration order.
func countCacheKeyFor(countSQL string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(countSQL)
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%v", name, params[name])
	}
	return b.String()
}

func toArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for k, v := range params {
		args = append(args, sql.Named(k, v))
	}
	return args
}

func contextURL(odataRoot, set string, entity bool) string {
	suffix := "$metadata#" + set
	if entity {
		suffix += "/$entity"
	}
	return strings.TrimSuffix(odataRoot, "/") + "/" + suffix
}
