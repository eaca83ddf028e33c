// Package pionlog bridges this agent's structured logging.Logger into
// pion/logging.LoggerFactory, the interface every pion/* component in this
// stack (dtls, sctp) takes for its own diagnostics.
package pionlog

import (
	"fmt"

	pionlogging "github.com/pion/logging"

	"go.viam.com/micro-rdk-agent/logging"
)

// Factory adapts logging.Logger into a pion LoggerFactory, scoping a new
// sub-logger per pion component via Named.
type Factory struct {
	Logger logging.Logger
}

func (f *Factory) NewLogger(scope string) pionlogging.LeveledLogger {
	return &adapter{logger: f.Logger.Named(scope)}
}

type adapter struct {
	logger logging.Logger
}

func (a *adapter) Trace(msg string)                          { a.logger.Debug(msg) }
func (a *adapter) Tracef(format string, args ...interface{}) { a.logger.Debug(fmt.Sprintf(format, args...)) }
func (a *adapter) Debug(msg string)                          { a.logger.Debug(msg) }
func (a *adapter) Debugf(format string, args ...interface{}) { a.logger.Debug(fmt.Sprintf(format, args...)) }
func (a *adapter) Info(msg string)                           { a.logger.Info(msg) }
func (a *adapter) Infof(format string, args ...interface{})  { a.logger.Info(fmt.Sprintf(format, args...)) }
func (a *adapter) Warn(msg string)                           { a.logger.Warn(msg) }
func (a *adapter) Warnf(format string, args ...interface{})  { a.logger.Warn(fmt.Sprintf(format, args...)) }
func (a *adapter) Error(msg string)                          { a.logger.Error(msg) }
func (a *adapter) Errorf(format string, args ...interface{}) { a.logger.Error(fmt.Sprintf(format, args...)) }
