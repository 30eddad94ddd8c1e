package recipe

import (
	"fmt"
	"maps"

	"github.com/matzehuels/scenegrid/pkg/errors"
)

// Params is a parameter set already partitioned by destination.
type Params struct {
	Scene Values `json:"scene,omitempty" toml:"scene" yaml:"scene"`
	Frame Values `json:"frame,omitempty" toml:"frame" yaml:"frame"`
	Layer Values `json:"layer,omitempty" toml:"layer" yaml:"layer"`
}

// Clone returns a copy of p with its own top-level maps.
func (p Params) Clone() Params {
	return Params{
		Scene: maps.Clone(p.Scene),
		Frame: maps.Clone(p.Frame),
		Layer: maps.Clone(p.Layer),
	}
}

// Values is one group of parameters. Numbers may arrive as any Go numeric
// type (TOML decodes int64, YAML int, JSON float64); the getters normalise
// them.
type Values map[string]any

// Str returns the string at key, or def when absent.
func (v Values) Str(key, def string) (string, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalid(key, "a string", raw)
	}
	return s, nil
}

// Float returns the number at key, or def when absent.
func (v Values) Float(key string, def float64) (float64, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return def, nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return 0, invalid(key, "a number", raw)
	}
	return f, nil
}

// Int returns the integer at key, or def when absent.
func (v Values) Int(key string, def int) (int, error) {
	f, err := v.Float(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, invalid(key, "an integer", v[key])
	}
	return int(f), nil
}

// Bool returns the boolean at key, or def when absent.
func (v Values) Bool(key string, def bool) (bool, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, invalid(key, "a boolean", raw)
	}
	return b, nil
}

// Strings returns the string list at key, or nil when absent.
func (v Values) Strings(key string) ([]string, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch list := raw.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, invalid(fmt.Sprintf("%s[%d]", key, i), "a string", item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, invalid(key, "a list of strings", raw)
	}
}

// Floats returns the number list at key, or nil when absent.
func (v Values) Floats(key string) ([]float64, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return nil, nil
	}
	out, ok := toFloats(raw)
	if !ok {
		return nil, invalid(key, "a list of numbers", raw)
	}
	return out, nil
}

// Matrix returns the list of number lists at key, or nil when absent.
func (v Values) Matrix(key string) ([][]float64, error) {
	raw, ok := v[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch rows := raw.(type) {
	case [][]float64:
		return rows, nil
	case []any:
		out := make([][]float64, len(rows))
		for i, row := range rows {
			f, ok := toFloats(row)
			if !ok {
				return nil, invalid(fmt.Sprintf("%s[%d]", key, i), "a list of numbers", row)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, invalid(key, "a list of number lists", raw)
	}
}

func invalid(key, want string, got any) error {
	return errors.New(errors.ErrCodeInvalidInput, "parameter %q must be %s, got %T", key, want, got)
}

func toFloats(raw any) ([]float64, bool) {
	switch list := raw.(type) {
	case []float64:
		return list, true
	case []int:
		out := make([]float64, len(list))
		for i, n := range list {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(list))
		for i, item := range list {
			f, ok := toFloat(item)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}
