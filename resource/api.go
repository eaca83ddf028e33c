package resource

import "fmt"

// APINamespace is the namespace segment of an API triple, e.g. "rdk".
type APINamespace string

// APINamespaceRDK is the namespace of every API built into this agent.
const APINamespaceRDK = APINamespace("rdk")

// Built-in API type names. "component" is the only one this closed-subset agent
// serves (spec.md §3: "type is always component in the supported subset").
const (
	APITypeComponent = "component"
	APITypeService   = "service"
)

// APIType is the (namespace, type) pair, e.g. ("rdk", "component").
type APIType struct {
	Namespace APINamespace `json:"namespace"`
	Name      string       `json:"type"`
}

// WithComponentType completes an APIType rooted at this namespace into a
// component API for the given subtype, e.g. "motor", "board".
func (n APINamespace) WithComponentType(subtype string) API {
	return API{Type: APIType{Namespace: n, Name: APITypeComponent}, SubtypeName: subtype}
}

// WithServiceType completes an APIType rooted at this namespace into a service API.
func (n APINamespace) WithServiceType(subtype string) API {
	return API{Type: APIType{Namespace: n, Name: APITypeService}, SubtypeName: subtype}
}

// API identifies a capability set: (namespace, type, subtype). Subtype is one of
// the closed set in spec.md §3 for components served by this agent.
type API struct {
	Type        APIType `json:"type"`
	SubtypeName string  `json:"subtype"`
}

// SupportedSubtypes enumerates the closed component subtype set this agent serves.
var SupportedSubtypes = []string{
	"board", "motor", "encoder", "sensor", "movement_sensor",
	"power_sensor", "servo", "base", "camera", "generic",
}

// IsComponent reports whether this API is of type "component".
func (a API) IsComponent() bool {
	return a.Type.Name == APITypeComponent
}

// String formats the API as "namespace:type:subtype".
func (a API) String() string {
	return fmt.Sprintf("%s:%s:%s", a.Type.Namespace, a.Type.Name, a.SubtypeName)
}
