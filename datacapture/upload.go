package datacapture

import (
	"context"
	"time"
)

// Uploader is the subset of app.Client's surface UploadTask calls against;
// accepting an interface here (rather than importing package app directly)
// keeps datacapture from depending on the cloud transport, matching how this
// package already takes resource.Resource and config.DataCollectorConfig by
// their own interfaces/structs rather than reaching into their owning
// packages' internals.
type Uploader interface {
	DataCaptureUpload(ctx context.Context, partID, componentName, componentType, method string, readings []map[string]interface{}) error
}

// UploadTask periodically drains every collector's pending readings from
// Store and flushes them to the cloud over Uploader, the Go counterpart of
// data_manager.rs's sync(): collection (Manager.Run) keeps running across a
// disconnect, queuing into Store, while this task only exists for the
// lifetime of one connected app.Client (it is rebuilt fresh on every
// reconnect, like every other periodic.Task in this agent).
type UploadTask struct {
	Client     Uploader
	PartID     string
	Collectors []*Collector
	Store      *Store
	Period     time.Duration
}

func (t *UploadTask) Name() string { return "data-capture-upload" }

func (t *UploadTask) DefaultPeriod() time.Duration {
	if t.Period <= 0 {
		return 10 * time.Second
	}
	return t.Period
}

func (t *UploadTask) Invoke(ctx context.Context) (time.Duration, bool, error) {
	for _, c := range t.Collectors {
		readings, err := t.Store.DrainAll(c.Key())
		if err != nil {
			return 0, false, err
		}
		if len(readings) == 0 {
			continue
		}
		payload := make([]map[string]interface{}, len(readings))
		for i, r := range readings {
			payload[i] = map[string]interface{}{
				"time_requested": r.TimeRequested.UTC().Format(time.RFC3339Nano),
				"time_received":  r.TimeReceived.UTC().Format(time.RFC3339Nano),
				"data":           r.Data,
			}
		}
		key := c.Key()
		if err := t.Client.DataCaptureUpload(ctx, t.PartID, key.Name, key.ComponentType, key.Method.String(), payload); err != nil {
			return 0, false, err
		}
	}
	return 0, false, nil
}
