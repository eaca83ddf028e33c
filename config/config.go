// Package config holds the declarative document fetched from the cloud control
// plane and turned into a live resource graph by package robot (spec.md §3, §6
// "Config shape").
package config

import (
	"bytes"
	"encoding/json"

	"go.viam.com/utils"

	"go.viam.com/micro-rdk-agent/resource"
)

// DataCollectorConfig names a background data-capture task attached to a
// component (spec.md §3 ComponentConfig.data_collector_configs; SPEC_FULL.md §2
// "data capture" DOMAIN+ feature, grounded on
// micro-rdk/src/common/data_collector.rs's DataCollectorConfig). CacheSizeKB
// sizes the collector's ring buffer in package datacapture; it defaults to 8KB
// when zero, matching the original's DEFAULT_CACHE_SIZE_KB.
type DataCollectorConfig struct {
	Method         string             `json:"method"`
	CaptureHz      float64            `json:"capture_frequency_hz"`
	CacheSizeKB    float64            `json:"cache_size_kb,omitempty"`
	Disabled       bool               `json:"disabled,omitempty"`
	AdditionalArgs utils.AttributeMap `json:"additional_params,omitempty"`
}

// ComponentConfig is one entry of RobotConfig.Components (spec.md §3
// "ComponentConfig"). Attributes uses go.viam.com/utils.AttributeMap, the same
// dynamic-attribute-map type the teacher's own ComponentConfig carries
// (viamrobotics-rdk/resource/config_test.go:492), rather than a hand-rolled
// union type: its Float64/Int/Bool/String accessors and
// utils.TransformAttributeMapToStruct cover exactly the leniency spec.md §9
// requires.
type ComponentConfig struct {
	Name                 string                `json:"name"`
	Namespace            string                `json:"namespace"`
	Type                 string                `json:"type"`
	API                  string                `json:"api,omitempty"`
	Model                string                `json:"model"`
	Attributes           utils.AttributeMap    `json:"attributes"`
	DataCollectorConfigs []DataCollectorConfig `json:"service_configs,omitempty"`
	DependsOn            []string              `json:"depends_on,omitempty"`
}

// ResourceName builds the component's resource.Name from its declared subtype
// (Type field doubles as the API subtype, e.g. "motor", "board") and instance
// name.
func (c ComponentConfig) ResourceName() resource.Name {
	return resource.NewName(resource.APINamespaceRDK.WithComponentType(c.Type), c.Name)
}

// ParsedModel parses and validates the Model field (spec.md §3 "Model").
func (c ComponentConfig) ParsedModel() (resource.Model, error) {
	return resource.NewModelFromString(c.Model)
}

// CloudConfig carries the cloud-assigned identity used for mDNS advertisement
// (spec.md §6 "mDNS", §3 "Config shape").
type CloudConfig struct {
	FQDN      string `json:"fqdn"`
	LocalFQDN string `json:"local_fqdn"`
}

// RobotConfig is the full declarative document fetched from the cloud (spec.md §6
// "Config shape").
type RobotConfig struct {
	Cloud      CloudConfig       `json:"cloud"`
	Components []ComponentConfig `json:"components"`
	Services   []ComponentConfig `json:"services,omitempty"`
}

// Equal reports byte-for-byte equality of the canonical JSON encoding of two
// configs, the comparison the config monitor uses (spec.md §4.L "byte-unequal to
// the cached curr_config").
func Equal(a, b RobotConfig) (bool, error) {
	aBytes, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	bBytes, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(aBytes, bBytes), nil
}

// DecodeAttribute reads a single attribute by key into dst, a pointer to a
// primitive type, using AttributeMap's own leniency (spec.md §9: "converters
// must accept 'string containing a number' for numeric targets").
func (c ComponentConfig) DecodeAttribute(key string, dst interface{}) error {
	if !c.Attributes.Has(key) {
		return &MissingAttributeError{cause: utils.NewConfigValidationFieldRequiredError("", key), key: key}
	}
	return decodeAttributeInto(c.Attributes, key, dst)
}

// MissingAttributeError is a configuration error (spec.md §7.1) for an absent
// required attribute, built on go.viam.com/utils.NewConfigValidationFieldRequiredError
// the way the teacher's own component constructors report the same failure
// (e.g. components/motor/gpiostepper reports
// utils.NewConfigValidationFieldRequiredError("", "dir")).
type MissingAttributeError struct {
	cause error
	key   string
}

func (e *MissingAttributeError) Error() string { return e.cause.Error() }
func (e *MissingAttributeError) Key() string   { return e.key }
