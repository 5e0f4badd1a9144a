package tilemap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Properties holds custom properties of a map, layer or object. Older Tiled
// exports write them as a plain object; newer ones as an array of
// {name, type, value} entries. Both forms decode into the same map and the
// plain object form is written back.
type Properties map[string]any

type propertyEntry struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value any    `json:"value"`
}

func (p *Properties) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*p = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var entries []propertyEntry
		if err := json.Unmarshal(b, &entries); err != nil {
			return fmt.Errorf("properties: %w", err)
		}
		out := make(Properties, len(entries))
		for _, e := range entries {
			out[e.Name] = e.Value
		}
		*p = out
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	*p = Properties(raw)
	return nil
}

// Clone returns a shallow copy; property values are scalars.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Int returns key as an integer. Numbers and numeric strings are accepted.
func (p Properties) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// Bool reports whether key is set to a truthy value: true, any non-zero
// number, or a non-empty string other than "0" and "false".
func (p Properties) Bool(key string) bool {
	v, ok := p[key]
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	case string:
		s := strings.TrimSpace(strings.ToLower(b))
		return s != "" && s != "0" && s != "false"
	}
	return v != nil
}

// Text returns key formatted as a string.
func (p Properties) Text(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}
