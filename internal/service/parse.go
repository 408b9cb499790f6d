package service

import (
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Raw is a decoded, not yet validated request body.
type Raw = map[string]any

// ParseID parses an identifier taken from a path or query string.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("invalid id")
	}
	return id, nil
}

func checkID(id int64) error {
	if id <= 0 {
		return invalid("invalid id")
	}
	return nil
}

// missing reports whether any key is absent or falsy (null, "", 0, false).
func missing(raw Raw, keys ...string) bool {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			return true
		}
		switch x := v.(type) {
		case string:
			if x == "" {
				return true
			}
		case bool:
			if !x {
				return true
			}
		case float64:
			if x == 0 {
				return true
			}
		case json.Number:
			if f, err := x.Float64(); err == nil && f == 0 {
				return true
			}
		case int:
			if x == 0 {
				return true
			}
		case int64:
			if x == 0 {
				return true
			}
		}
	}
	return false
}

// asID accepts any decoded number that is a positive integer.
func asID(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return wholeID(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, n > 0
		}
		// 3.0 and 1e2 are still whole numbers.
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return wholeID(f)
	case int:
		return int64(x), x > 0
	case int32:
		return int64(x), x > 0
	case int64:
		return x, x > 0
	}
	return 0, false
}

func wholeID(f float64) (int64, bool) {
	if f <= 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// nullableText reads an optional string field that may be set to null.
// A nil result means the key was absent; ok is false for any other type.
func nullableText(raw Raw, key string) (v *sql.NullString, ok bool) {
	x, present := raw[key]
	if !present {
		return nil, true
	}
	if x == nil {
		return &sql.NullString{}, true
	}
	s, isStr := x.(string)
	if !isStr {
		return nil, false
	}
	return &sql.NullString{String: s, Valid: true}, true
}

// nullableID is nullableText for a foreign key.
func nullableID(raw Raw, key string) (v *sql.NullInt64, ok bool) {
	x, present := raw[key]
	if !present {
		return nil, true
	}
	if x == nil {
		return &sql.NullInt64{}, true
	}
	id, isID := asID(x)
	if !isID {
		return nil, false
	}
	return &sql.NullInt64{Int64: id, Valid: true}, true
}

// requiredText trims a string field and reports whether anything is left.
func requiredText(v any) (string, bool) {
	s, ok := asString(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
