package config_test

import (
	"testing"

	"go.viam.com/test"
	"go.viam.com/utils"

	"go.viam.com/micro-rdk-agent/config"
)

func TestResourceNameAndModel(t *testing.T) {
	c := config.ComponentConfig{
		Name:  "motor1",
		Type:  "motor",
		Model: "rdk:builtin:fake",
	}
	name := c.ResourceName()
	test.That(t, name.Name, test.ShouldEqual, "motor1")
	test.That(t, name.API.SubtypeName, test.ShouldEqual, "motor")

	m, err := c.ParsedModel()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.String(), test.ShouldEqual, "rdk:builtin:fake")
}

func TestDecodeAttribute(t *testing.T) {
	c := config.ComponentConfig{
		Attributes: utils.AttributeMap{
			"pin":       "14",
			"max_power": 0.9,
		},
	}
	var pin int
	test.That(t, c.DecodeAttribute("pin", &pin), test.ShouldBeNil)
	test.That(t, pin, test.ShouldEqual, 14)

	var maxPower float64
	test.That(t, c.DecodeAttribute("max_power", &maxPower), test.ShouldBeNil)
	test.That(t, maxPower, test.ShouldEqual, 0.9)

	err := c.DecodeAttribute("missing", &pin)
	test.That(t, err, test.ShouldNotBeNil)
}

type fakeMotorConfig struct {
	PinA        string  `mapstructure:"pin_a"`
	MaxPowerPct float64 `mapstructure:"max_power_pct"`
}

func TestDecodeInto(t *testing.T) {
	c := config.ComponentConfig{
		Attributes: utils.AttributeMap{
			"pin_a":         "A0",
			"max_power_pct": "0.5",
		},
	}
	var cfg fakeMotorConfig
	test.That(t, c.DecodeInto(&cfg), test.ShouldBeNil)
	test.That(t, cfg.PinA, test.ShouldEqual, "A0")
	test.That(t, cfg.MaxPowerPct, test.ShouldEqual, 0.5)
}

func TestConfigEqual(t *testing.T) {
	a := config.RobotConfig{Components: []config.ComponentConfig{{Name: "m1", Type: "motor"}}}
	b := config.RobotConfig{Components: []config.ComponentConfig{{Name: "m1", Type: "motor"}}}
	c := config.RobotConfig{Components: []config.ComponentConfig{{Name: "m2", Type: "motor"}}}

	eq, err := config.Equal(a, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, eq, test.ShouldBeTrue)

	eq, err = config.Equal(a, c)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, eq, test.ShouldBeFalse)
}
