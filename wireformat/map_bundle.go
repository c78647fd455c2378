package wireformat

import (
	"maps"
	"math"
	"slices"
)

// MapBundle is an in-process Bundle backed by a map. Causes are stored as
// the original error values.
type MapBundle map[string]any

var _ Bundle = MapBundle(nil)

// NewMapBundle returns an empty MapBundle.
func NewMapBundle() MapBundle {
	return make(MapBundle)
}

func (b MapBundle) GetString(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// GetInt accepts any integer type and the float64/json.Number values
// produced by encoding/json. Unsigned values above math.MaxInt and
// fractional floats read as 0.
func (b MapBundle) GetInt(key string) int {
	switch v := b[key].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		if v <= math.MaxInt {
			return int(v)
		}
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		if v <= math.MaxInt {
			return int(v)
		}
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case interface{ Int64() (int64, error) }:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

func (b MapBundle) PutString(key, value string) {
	b[key] = value
}

func (b MapBundle) PutInt(key string, value int) {
	b[key] = value
}

func (b MapBundle) PutCause(key string, cause error) {
	b[key] = cause
}

func (b MapBundle) GetCause(key string) error {
	err, _ := b[key].(error)
	return err
}

// Has reports whether key is stored, even with a nil value.
func (b MapBundle) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Keys returns the stored keys in sorted order.
func (b MapBundle) Keys() []string {
	return slices.Sorted(maps.Keys(b))
}
