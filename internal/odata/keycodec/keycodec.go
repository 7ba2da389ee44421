// Package keycodec turns opaque backend ListingKey strings into stable,
// URL-safe decimal display keys, and back, per spec.md §4.7. Encoding is a
// pure hash; decoding is a lookup against a side table populated lazily on
// first encode, per the Open Question resolution recorded in SPEC_FULL.md
// §4.7 — a reversible redesign in place of re-hashing every candidate key.
package keycodec

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"errors"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/rechat/reso-odata/internal/platform/database"
)

// Encode hashes a backend key into its display form: SHA-256, first 8 bytes
// big-endian as an unsigned integer, high bit masked to zero, rendered
// decimal.
func Encode(backendKey string) string {
	sum := sha256.Sum256([]byte(backendKey))
	n := binary.BigEndian.Uint64(sum[:8])
	n &^= 1 << 63
	return strconv.FormatUint(n, 10)
}

// Store persists the encoded↔backend key mapping so encoded keys can be
// decoded back to the backend string they were derived from.
type Store struct {
	db database.DB
}

func NewStore(db database.DB) *Store {
	return &Store{db: db}
}

// EncodeAndRemember encodes backendKey and, if this is the first time this
// backend key has been seen, persists the mapping. Safe to call repeatedly
// with the same backendKey.
func (s *Store) EncodeAndRemember(ctx context.Context, backendKey string) (string, error) {
	encoded := Encode(backendKey)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO property_key_map (encoded_key, backend_key) VALUES ($1, $2)
		 ON CONFLICT (encoded_key) DO NOTHING`,
		encoded, backendKey)
	if err != nil {
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to persist property key mapping")
	}
	return encoded, nil
}

// Decode looks up the backend key for an encoded key. The second return
// value is false on a lookup miss, which the resource driver (C5) must turn
// into a 404 without issuing any MLS query (spec.md §4.5 "get" step 3).
func (s *Store) Decode(ctx context.Context, encodedKey string) (string, bool, error) {
	var backendKey string
	err := s.db.GetContext(ctx, &backendKey,
		`SELECT backend_key FROM property_key_map WHERE encoded_key = $1`, encodedKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up property key mapping")
	}
	return backendKey, true, nil
}
