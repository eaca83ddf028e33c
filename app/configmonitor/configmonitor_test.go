package configmonitor_test

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/app/configmonitor"
	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/logging"
)

func TestInvokeNoChangeDoesNotFireHook(t *testing.T) {
	initial := config.RobotConfig{Cloud: config.CloudConfig{FQDN: "robot.viam.cloud"}}
	fired := false
	task := configmonitor.New(func(ctx context.Context) (config.RobotConfig, error) {
		return initial, nil
	}, initial, func(config.RobotConfig) { fired = true }, logging.NewTestLogger())

	_, _, err := task.Invoke(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fired, test.ShouldBeFalse)
}

func TestInvokeFiresHookOnChange(t *testing.T) {
	initial := config.RobotConfig{Cloud: config.CloudConfig{FQDN: "robot.viam.cloud"}}
	changed := config.RobotConfig{Cloud: config.CloudConfig{FQDN: "robot2.viam.cloud"}}
	var got config.RobotConfig
	task := configmonitor.New(func(ctx context.Context) (config.RobotConfig, error) {
		return changed, nil
	}, initial, func(c config.RobotConfig) { got = c }, logging.NewTestLogger())

	_, _, err := task.Invoke(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, changed)
}
