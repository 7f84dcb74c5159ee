// File: lixenwraith/chainconf/type.go
package chainconf

import (
	"fmt"
	"strconv"
)

// String returns the highest-priority value of key.
func (m *Map) String(key string) (string, error) {
	val, found := m.Lookup(key)
	if !found {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, nil
}

// Int64 returns the value of key parsed as an integer.
// Base prefixes ("0x", "0o", "0b") are accepted; floats are truncated.
func (m *Map) Int64(key string) (int64, error) {
	val, found := m.Lookup(key)
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	i, err := strconv.ParseInt(val, 0, 64)
	if err == nil {
		return i, nil
	}
	if f, ferr := strconv.ParseFloat(val, 64); ferr == nil {
		return int64(f), nil
	}
	// Return the original integer parsing error if float also fails
	return 0, fmt.Errorf("cannot convert %q to int64 for key %s: %w", val, key, err)
}

// Bool returns the value of key parsed as a boolean.
func (m *Map) Bool(key string) (bool, error) {
	val, found := m.Lookup(key)
	if !found {
		return false, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("cannot convert %q to bool for key %s: %w", val, key, err)
	}
	return b, nil
}

// Float64 returns the value of key parsed as a float.
func (m *Map) Float64(key string) (float64, error) {
	val, found := m.Lookup(key)
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %q to float64 for key %s: %w", val, key, err)
	}
	return f, nil
}
