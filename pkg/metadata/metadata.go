// # Slide Metadata
//
// Package metadata holds the generic property map a format plugin fills
// in while opening a slide. Values are tagged (string, unsigned integer,
// or float) so callers get typed lookups without knowing which format
// produced the map.
//
// ## Mandatory Keys
//
// A validated map always carries KeyFormat and KeyLevels. Validate
// reports every missing mandatory key at once, so a plugin author sees
// the full list instead of fixing one key per run.
package metadata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Standard property keys. Format plugins should use these names where
// the underlying format supplies the value.
const (
	KeyFormat           = "format"
	KeyLevels           = "levels"
	KeyMPPX             = "mpp_x"
	KeyMPPY             = "mpp_y"
	KeyMagnification    = "magnification"
	KeyObjective        = "objective"
	KeyScannerModel     = "scanner_model"
	KeyScannerID        = "scanner_id"
	KeySlideID          = "slide_id"
	KeyChannels         = "channels"
	KeyAssociatedImages = "associated_images"
)

var mandatoryKeys = []string{KeyFormat, KeyLevels}

// Kind identifies which variant a Value holds.
type Kind int

const (
	String Kind = iota
	Uint
	Float
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Uint:
		return "uint"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is one tagged property value.
type Value struct {
	kind Kind
	str  string
	num  uint64
	flt  float64
}

// StringValue wraps a string property.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// UintValue wraps an unsigned integer property.
func UintValue(u uint64) Value { return Value{kind: Uint, num: u} }

// FloatValue wraps a float property.
func FloatValue(f float64) Value { return Value{kind: Float, flt: f} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// String renders the value the way it prints in a property listing.
func (v Value) String() string {
	switch v.kind {
	case Uint:
		return strconv.FormatUint(v.num, 10)
	case Float:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	default:
		return v.str
	}
}

// AsString returns the value as a string, formatting numbers.
func (v Value) AsString() string { return v.String() }

// AsUint returns the value as an unsigned integer. Strings are parsed,
// floats are truncated; a value that cannot convert reports ok=false.
func (v Value) AsUint() (uint64, bool) {
	switch v.kind {
	case Uint:
		return v.num, true
	case Float:
		if v.flt < 0 {
			return 0, false
		}
		return uint64(v.flt), true
	default:
		u, err := strconv.ParseUint(strings.TrimSpace(v.str), 10, 64)
		return u, err == nil
	}
}

// AsFloat returns the value as a float. Strings are parsed; a value that
// cannot convert reports ok=false.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case Float:
		return v.flt, true
	case Uint:
		return float64(v.num), true
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return f, err == nil
	}
}

// Metadata is a property map with deterministic, key-sorted iteration.
// The zero value is ready to use. Metadata is not synchronized; plugins
// build one during open and readers treat it as read-only afterwards.
type Metadata struct {
	values map[string]Value
}

// New returns an empty property map.
func New() *Metadata {
	return &Metadata{values: make(map[string]Value)}
}

// Set stores a value, replacing any previous value for the key.
func (m *Metadata) Set(key string, value Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	m.values[key] = value
}

// SetString stores a string property.
func (m *Metadata) SetString(key, value string) { m.Set(key, StringValue(value)) }

// SetUint stores an unsigned integer property.
func (m *Metadata) SetUint(key string, value uint64) { m.Set(key, UintValue(value)) }

// SetFloat stores a float property.
func (m *Metadata) SetFloat(key string, value float64) { m.Set(key, FloatValue(value)) }

// Get returns the raw tagged value for a key.
func (m *Metadata) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether a key is present.
func (m *Metadata) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Len returns the number of stored properties.
func (m *Metadata) Len() int { return len(m.values) }

// GetString returns the key's value as a string, or def when absent.
func (m *Metadata) GetString(key, def string) string {
	if v, ok := m.values[key]; ok {
		return v.AsString()
	}
	return def
}

// GetUint returns the key's value as an unsigned integer, or def when
// absent or not convertible.
func (m *Metadata) GetUint(key string, def uint64) uint64 {
	if v, ok := m.values[key]; ok {
		if u, ok := v.AsUint(); ok {
			return u
		}
	}
	return def
}

// GetFloat returns the key's value as a float, or def when absent or not
// convertible.
func (m *Metadata) GetFloat(key string, def float64) float64 {
	if v, ok := m.values[key]; ok {
		if f, ok := v.AsFloat(); ok {
			return f
		}
	}
	return def
}

// Keys returns all keys in sorted order.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the mandatory-key contract. The returned error names
// every missing mandatory key, not just the first.
func (m *Metadata) Validate() error {
	var missing []string
	for _, key := range mandatoryKeys {
		if !m.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("metadata missing mandatory keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// String renders the map as "key: value" lines in key order.
func (m *Metadata) String() string {
	var b strings.Builder
	for _, key := range m.Keys() {
		fmt.Fprintf(&b, "%s: %s\n", key, m.values[key])
	}
	return b.String()
}
