// File: lixenwraith/chainconf/helper.go
package chainconf

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Reserved keys recognized while flattening a parsed file.
const (
	includeKey     = "include"
	conditionTag   = "if "
	negationTag    = "!"
	arraySeparator = "\n"
)

// flattenTree converts a parsed file into per-key chains. Nested tables
// become dot-separated keys. Values from active conditional tables are
// placed before plain values of the same key.
func flattenTree(tree map[string]any, prefix, origin string, defines Defines, out map[string]Chain) error {
	var plain, conditional []string
	for _, key := range slices.Sorted(maps.Keys(tree)) {
		if strings.HasPrefix(key, conditionTag) {
			conditional = append(conditional, key)
		} else {
			plain = append(plain, key)
		}
	}

	for _, key := range plain {
		if prefix == "" && key == includeKey {
			continue
		}

		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if err := flattenValue(tree[key], path, origin, defines, out); err != nil {
			return err
		}
	}

	for _, key := range conditional {
		if !conditionHolds(strings.TrimPrefix(key, conditionTag), defines) {
			continue
		}

		nested, isMap := asTree(tree[key])
		if !isMap {
			return fmt.Errorf("conditional %q must be a table, got %T", key, tree[key])
		}

		branch := make(map[string]Chain)
		if err := flattenTree(nested, prefix, origin, defines, branch); err != nil {
			return err
		}
		for path, chain := range branch {
			out[path] = append(chain, out[path]...)
		}
	}

	return nil
}

// flattenValue stores one parsed value under path. Tables recurse; arrays
// holding tables or arrays are flattened by index (servers.0.host).
func flattenValue(value any, path, origin string, defines Defines, out map[string]Chain) error {
	if nested, isMap := asTree(value); isMap {
		return flattenTree(nested, path, origin, defines, out)
	}

	if items, isArray := asArray(value); isArray && !allScalars(items) {
		for i, item := range items {
			if err := flattenValue(item, path+"."+strconv.Itoa(i), origin, defines, out); err != nil {
				return err
			}
		}
		return nil
	}

	v, err := scalarValue(value)
	if err != nil {
		return fmt.Errorf("invalid value for key %q: %w", path, err)
	}
	v.Origin = origin
	out[path] = append(out[path], v)
	return nil
}

// asArray normalizes the array types produced by the different parsers.
func asArray(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items, true
	}
	return nil, false
}

// allScalars reports whether no item is a table or an array.
func allScalars(items []any) bool {
	for _, item := range items {
		if _, isMap := asTree(item); isMap {
			return false
		}
		if _, isArray := asArray(item); isArray {
			return false
		}
	}
	return true
}

// conditionHolds evaluates "NAME" or "!NAME" against the active defines.
func conditionHolds(cond string, defines Defines) bool {
	cond = strings.TrimSpace(cond)
	if negated, ok := strings.CutPrefix(cond, negationTag); ok {
		return !defines.Has(strings.TrimSpace(negated))
	}
	return defines.Has(cond)
}

// asTree normalizes the table types produced by the different parsers.
func asTree(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		tree := make(map[string]any, len(v))
		for k, val := range v {
			tree[fmt.Sprint(k)] = val
		}
		return tree, true
	}
	return nil, false
}

// scalarValue renders a parsed leaf as a chain entry. Arrays of scalars are
// joined with newlines; null becomes an absent value.
func scalarValue(value any) (Value, error) {
	if value == nil {
		return Value{}, nil
	}

	if items, ok := asArray(value); ok {
		texts := make([]string, 0, len(items))
		for i, item := range items {
			s, err := formatScalar(item)
			if err != nil {
				return Value{}, fmt.Errorf("array element %d: %w", i, err)
			}
			texts = append(texts, s)
		}
		return Text(strings.Join(texts, arraySeparator)), nil
	}

	s, err := formatScalar(value)
	if err != nil {
		return Value{}, err
	}
	return Text(s), nil
}

// formatScalar converts a parsed scalar to its text form.
func formatScalar(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}

	return "", fmt.Errorf("unsupported value type %T", value)
}

// includePaths extracts the include list from the root of a parsed file,
// including lists found in active root-level conditional tables. Those come
// first, matching the priority of conditional values.
func includePaths(tree map[string]any, defines Defines) ([]string, error) {
	var paths []string

	for _, key := range slices.Sorted(maps.Keys(tree)) {
		if !strings.HasPrefix(key, conditionTag) || !conditionHolds(strings.TrimPrefix(key, conditionTag), defines) {
			continue
		}
		nested, isMap := asTree(tree[key])
		if !isMap {
			continue
		}
		branch, err := includePaths(nested, defines)
		if err != nil {
			return nil, err
		}
		paths = append(paths, branch...)
	}

	raw, ok := tree[includeKey]
	if !ok || raw == nil {
		return paths, nil
	}

	switch v := raw.(type) {
	case string:
		return append(paths, v), nil
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("include entries must be strings, got %T", item)
			}
			paths = append(paths, s)
		}
		return paths, nil
	}

	return nil, fmt.Errorf("include must be a string or array of strings, got %T", raw)
}

// insertNested stores value in a nested map under a dot-notation path,
// creating intermediate maps. A key that is both a value and a table
// (for example "a" and "a.b") is reported as ErrKeyConflict.
func insertNested(nested map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	current := nested

	for i, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if !exists {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
			continue
		}
		nextMap, isMap := next.(map[string]any)
		if !isMap {
			return fmt.Errorf("%w: %q is a value and a table (%q)",
				ErrKeyConflict, strings.Join(segments[:i+1], "."), path)
		}
		current = nextMap
	}

	last := segments[len(segments)-1]
	if _, exists := current[last]; exists {
		return fmt.Errorf("%w: %q is a value and a table", ErrKeyConflict, path)
	}
	current[last] = value
	return nil
}

// navigateToPath traverses nested map to reach the specified path
func navigateToPath(nested map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(path, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}
