package ir

import (
	"encoding/json"
	"strconv"
)

// Well-known metadata fields.
const (
	FieldType          = "type"
	FieldName          = "name"
	FieldRA            = "ra"
	FieldDec           = "dec"
	FieldMagnitude     = "magnitude"
	FieldBayer         = "bayer"
	FieldConstellation = "constellation"
	FieldObjectType    = "object_type"
	FieldIAU           = "iau_id"
)

// Record is the metadata of one element: a field name to value mapping with
// a "type" discriminator. Values decoded from JSON arrive as float64, string,
// bool or nil.
type Record map[string]any

// Type returns the record's type discriminator, or "" when absent.
func (r Record) Type() string {
	s, _ := r.String(FieldType)
	return s
}

// String returns a field as a non-empty string.
func (r Record) String(key string) (string, bool) {
	switch v := r[key].(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	case nil:
		return "", false
	default:
		return "", false
	}
}

// Float returns a numeric field.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, finite(v)
	case float32:
		return float64(v), finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil && finite(f)
	default:
		return 0, false
	}
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}
