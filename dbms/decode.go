package dbms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/ssyssy/ottertune/pkg/errors"
)

// RawMetrics is a metric snapshot as reported by an engine: either a flat
// name→value mapping, or statistics grouped by scope where each scope
// holds a sequence of name→value entries (one per database, table, ...).
// A nil value in a scoped entry means the engine reported NULL.
type RawMetrics struct {
	Flat   map[string]string               `json:"flat,omitempty" yaml:"flat,omitempty"`
	Scoped map[string][]map[string]*string `json:"scoped,omitempty" yaml:"scoped,omitempty"`
}

// Len returns the number of flat keys plus the number of scoped entries.
func (m RawMetrics) Len() int {
	n := len(m.Flat)
	for _, entries := range m.Scoped {
		n += len(entries)
	}
	return n
}

// MarshalJSON encodes the snapshot in the shape DecodeRawMetrics reads:
// flat entries and scopes side by side in one object.
func (m RawMetrics) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Flat)+len(m.Scoped))
	for k, v := range m.Flat {
		out[k] = v
	}
	for scope, entries := range m.Scoped {
		if _, dup := out[scope]; dup {
			return nil, errors.NewValueError("MarshalJSON", "scope "+strconv.Quote(scope)+" shadows a flat metric")
		}
		out[scope] = entries
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler with DecodeRawMetrics.
func (m *RawMetrics) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeRawMetrics(data)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// DecodeRawMetrics decodes a JSON metric snapshot. Top-level scalar values
// become Flat entries. An array of objects becomes a Scoped sequence and a
// single object is treated as a sequence of one entry. Numbers keep their
// textual form, so "123" and 123 decode to the same value.
func DecodeRawMetrics(data []byte) (RawMetrics, error) {
	top, err := decodeObject(data)
	if err != nil {
		return RawMetrics{}, errors.Wrap(err, "decode metrics")
	}

	out := RawMetrics{Flat: make(map[string]string)}
	for _, key := range sortedKeys(top) {
		switch v := top[key].(type) {
		case []interface{}:
			entries := make([]map[string]*string, 0, len(v))
			for i, item := range v {
				obj, ok := item.(map[string]interface{})
				if !ok {
					return RawMetrics{}, errors.NewValueError("DecodeRawMetrics",
						fmt.Sprintf("scope %q entry %d is not an object", key, i))
				}
				entry, err := scopedEntry(key, obj)
				if err != nil {
					return RawMetrics{}, err
				}
				entries = append(entries, entry)
			}
			out.setScope(key, entries)
		case map[string]interface{}:
			entry, err := scopedEntry(key, v)
			if err != nil {
				return RawMetrics{}, err
			}
			out.setScope(key, []map[string]*string{entry})
		default:
			s, err := scalarString(key, v)
			if err != nil {
				return RawMetrics{}, err
			}
			// null は空文字列として残し、後段の数値変換でメトリクス名付きで失敗させる
			if s == nil {
				out.Flat[key] = ""
			} else {
				out.Flat[key] = *s
			}
		}
	}
	return out, nil
}

// DecodeConfig decodes a flat JSON object of knob values. Scalars keep
// their textual form. Null or nested values are rejected.
func DecodeConfig(data []byte) (map[string]string, error) {
	top, err := decodeObject(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	out := make(map[string]string, len(top))
	for key, v := range top {
		s, err := scalarString(key, v)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, errors.NewNullParameterValue(key)
		}
		out[key] = *s
	}
	return out, nil
}

func (m *RawMetrics) setScope(scope string, entries []map[string]*string) {
	if m.Scoped == nil {
		m.Scoped = make(map[string][]map[string]*string)
	}
	m.Scoped[scope] = entries
}

func decodeObject(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var top map[string]interface{}
	if err := dec.Decode(&top); err != nil {
		return nil, err
	}
	if top == nil {
		return nil, errors.ErrEmptyData
	}
	return top, nil
}

func scopedEntry(scope string, obj map[string]interface{}) (map[string]*string, error) {
	entry := make(map[string]*string, len(obj))
	for name, v := range obj {
		s, err := scalarString(scope+"."+name, v)
		if err != nil {
			return nil, err
		}
		entry[name] = s
	}
	return entry, nil
}

func scalarString(name string, v interface{}) (*string, error) {
	var s string
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = x
	case json.Number:
		s = x.String()
	case bool:
		s = fmt.Sprint(x)
	default:
		return nil, errors.NewValueError("decode", fmt.Sprintf("value of %s is not a scalar", name))
	}
	return &s, nil
}

func sortedKeys[K ~string, V any](m map[K]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}
