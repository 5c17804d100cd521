// Package maputils provides typed access to values of decoded JSON objects.
package maputils

import "fmt"

// StrVal returns the value of the key as string.
// If the key does not exist an empty string is returned.
// If they key exist but has a different type an error is returned.
func StrVal(m map[string]any, key string) (string, error) {
	val, ok := m[key]
	if !ok {
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("value of key %q has type %T, expected string", key, val)
	}

	return str, nil
}

// BoolVal returns the value of the key as bool.
// Workflow inputs are passed as strings, the values "true" and "false" are
// accepted as well as JSON booleans.
// If the key does not exist false is returned.
func BoolVal(m map[string]any, key string) (bool, error) {
	val, ok := m[key]
	if !ok {
		return false, nil
	}

	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true":
			return true, nil
		case "false", "":
			return false, nil
		}

		return false, fmt.Errorf("value of key %q is %q, expected \"true\" or \"false\"", key, v)
	default:
		return false, fmt.Errorf("value of key %q has type %T, expected string or bool", key, val)
	}
}

// MapVal returns the value of the key as map[string]any
// If the key does not exist an empty map is returned.
// If they key exist but has a different type an error is returned.
func MapVal(m map[string]any, key string) (map[string]any, error) {
	val, ok := m[key]
	if !ok || val == nil {
		return map[string]any{}, nil
	}

	iMap, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("value of key %q has type %T, expected map[string]any", key, val)
	}

	return iMap, nil
}
