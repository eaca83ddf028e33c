package datacapture

import (
	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/resource"
)

// BuildCollectors walks conf's components, resolving each declared
// DataCollectorConfigs entry against the already-built graph. A component
// with no built resource (it failed to construct, per robot.Builder's
// isolate-and-continue convention) or a misconfigured collector entry is
// skipped and logged rather than aborting the whole set, the same
// failure-isolation convention package robot uses for resource construction.
func BuildCollectors(graph *resource.Graph, conf config.RobotConfig, logger logging.Logger) []*Collector {
	var collectors []*Collector
	for _, cc := range conf.Components {
		if len(cc.DataCollectorConfigs) == 0 {
			continue
		}
		res, err := graph.Lookup(cc.ResourceName())
		if err != nil {
			logger.Warnw("skipping data collectors for unbuilt resource", "name", cc.Name, "error", err)
			continue
		}
		for _, dc := range cc.DataCollectorConfigs {
			c, ok, err := FromConfig(cc.Name, cc.Type, res, dc)
			if err != nil {
				logger.Errorw("skipping misconfigured data collector", "name", cc.Name, "method", dc.Method, "error", err)
				continue
			}
			if !ok {
				continue
			}
			collectors = append(collectors, c)
		}
	}
	return collectors
}
