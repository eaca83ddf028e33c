package resource

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ModelNamespace is the namespace segment of a Model triple (spec.md §3 "Model").
type ModelNamespace string

// ModelFamily is the (namespace, family) pair that groups related models, e.g.
// "rdk:builtin".
type ModelFamily struct {
	Namespace ModelNamespace `json:"namespace"`
	Name      string         `json:"family"`
}

// Model identifies a driver implementation: (namespace, family, model).
type Model struct {
	Family ModelFamily `json:"family"`
	Name   string      `json:"model"`
}

var segmentRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// WithFamily returns a ModelFamily rooted at this namespace.
func (n ModelNamespace) WithFamily(family string) ModelFamily {
	return ModelFamily{Namespace: n, Name: family}
}

// WithModel completes a ModelFamily into a Model.
func (f ModelFamily) WithModel(model string) Model {
	return Model{Family: f, Name: model}
}

// Validate checks that every segment is present and uses only the allowed
// character set, matching the teacher's model_test.go error strings exactly so
// tooling built against this core can match on substring.
func (m Model) Validate() error {
	if m.Family.Namespace == "" {
		return fmt.Errorf("namespace field for model missing")
	}
	if m.Family.Name == "" {
		return fmt.Errorf("model_family field for model missing")
	}
	if m.Name == "" {
		return fmt.Errorf("name field for model missing")
	}
	for _, seg := range []string{string(m.Family.Namespace), m.Family.Name, m.Name} {
		if strings.ContainsRune(seg, ':') {
			return fmt.Errorf("reserved character : used in model segment %q", seg)
		}
		if !segmentRe.MatchString(seg) {
			return fmt.Errorf("invalid character in model segment %q", seg)
		}
	}
	return nil
}

// String formats the Model back into its colon-separated wire form. Testable
// property (spec.md §8): for any Model m parsed from s, m.String() == s.
func (m Model) String() string {
	return fmt.Sprintf("%s:%s:%s", m.Family.Namespace, m.Family.Name, m.Name)
}

// NewModelFromString parses "namespace:family:model" into a Model and validates it.
func NewModelFromString(s string) (Model, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Model{}, fmt.Errorf("invalid model string %q: expected namespace:family:model", s)
	}
	m := ModelNamespace(parts[0]).WithFamily(parts[1]).WithModel(parts[2])
	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// MarshalJSON implements json.Marshaler, encoding the Model as its colon string.
func (m Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Model) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewModelFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
