package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Known metadata keys
const (
	MetaWidth         = "width"
	MetaHeight        = "height"
	MetaDuration      = "duration"
	MetaThumbnailKey  = "thumbnailKey"
	MetaPreviewKey    = "previewKey"
	MetaFormat        = "format"
	MetaVariantPrefix = "variant."
)

// MetadataValue holds one scalar: string, int64, float64 or bool
type MetadataValue struct {
	v any
}

// String wraps a string
func String(s string) MetadataValue { return MetadataValue{v: s} }

// Int wraps an integer
func Int(i int64) MetadataValue { return MetadataValue{v: i} }

// Float wraps a float
func Float(f float64) MetadataValue { return MetadataValue{v: f} }

// Bool wraps a boolean
func Bool(b bool) MetadataValue { return MetadataValue{v: b} }

// Raw returns the underlying scalar
func (m MetadataValue) Raw() any { return m.v }

// AsString returns the value if it holds a string
func (m MetadataValue) AsString() (string, bool) {
	s, ok := m.v.(string)
	return s, ok
}

// AsInt returns the value if it holds a whole number
func (m MetadataValue) AsInt() (int64, bool) {
	switch v := m.v.(type) {
	case int64:
		return v, true
	case float64:
		if v == math.Trunc(v) {
			return int64(v), true
		}
	}
	return 0, false
}

// AsFloat returns the value as float if it is numeric
func (m MetadataValue) AsFloat() (float64, bool) {
	switch v := m.v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// AsBool returns the value if it holds a boolean
func (m MetadataValue) AsBool() (bool, bool) {
	b, ok := m.v.(bool)
	return b, ok
}

// MarshalJSON implements json.Marshaler
func (m MetadataValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.v)
}

// UnmarshalJSON implements json.Unmarshaler, rejecting non scalar values
func (m *MetadataValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string, bool:
		m.v = v
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			m.v = int64(v)
		} else {
			m.v = v
		}
	case nil:
		m.v = nil
	default:
		return fmt.Errorf("metadata values must be scalars, got %T", raw)
	}
	return nil
}

// Metadata is the open metadata map of files and versions
type Metadata map[string]MetadataValue

// Set stores a value, allocating the map when needed
func (m *Metadata) Set(key string, value MetadataValue) {
	if *m == nil {
		*m = Metadata{}
	}
	(*m)[key] = value
}

// String returns a string entry
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Int returns an integer entry
func (m Metadata) Int(key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// VariantKeys returns the storage keys of every recorded image variant
func (m Metadata) VariantKeys() []string {
	var keys []string
	for k, v := range m {
		if len(k) > len(MetaVariantPrefix) && k[:len(MetaVariantPrefix)] == MetaVariantPrefix {
			if s, ok := v.AsString(); ok && s != "" {
				keys = append(keys, s)
			}
		}
	}
	return keys
}

// Clone returns a shallow copy, nil stays nil
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into m
func (m *Metadata) Merge(other Metadata) {
	for k, v := range other {
		m.Set(k, v)
	}
}

// IsReservedKey reports whether key is written by the server and never taken from clients
func IsReservedKey(key string) bool {
	switch key {
	case MetaWidth, MetaHeight, MetaFormat, MetaThumbnailKey, MetaPreviewKey:
		return true
	}
	return strings.HasPrefix(key, MetaVariantPrefix)
}

// WithoutReserved returns a copy of m without the server-owned keys
func (m Metadata) WithoutReserved() Metadata {
	out := m.Clone()
	for k := range out {
		if IsReservedKey(k) {
			delete(out, k)
		}
	}
	return out
}
