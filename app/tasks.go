package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.viam.com/micro-rdk-agent/storage"
)

// SignalingTask implements periodic.Task with default_period=0, i.e. "run
// continuously" (spec.md §4.H): each invocation opens a fresh signaling bidi
// and hands it to the server loop over Sessions, then immediately re-enters
// Run.
type SignalingTask struct {
	Client   *Client
	RPCHost  string
	Sessions chan<- *SignalingSession
}

func (t *SignalingTask) Name() string                { return "signaling" }
func (t *SignalingTask) DefaultPeriod() time.Duration { return 0 }

func (t *SignalingTask) Invoke(ctx context.Context) (time.Duration, bool, error) {
	session, err := t.Client.Signaling(ctx, t.RPCHost)
	if err != nil {
		return 0, false, err
	}
	select {
	case t.Sessions <- session:
	case <-ctx.Done():
		_ = session.Close()
	}
	return 0, false, nil
}

// NeedsRestartTask polls Client.NeedsRestart and invokes OnRestart (which, in
// the original, never returns — it tears the process down) once the cloud
// asks for a restart (spec.md §4.G "NeedsRestart").
type NeedsRestartTask struct {
	Client    *Client
	OnRestart func()
}

func (t *NeedsRestartTask) Name() string                { return "needs-restart" }
func (t *NeedsRestartTask) DefaultPeriod() time.Duration { return defaultRestartCheckInterval }

// jwtRenewalWindow is how far ahead of its exp claim a token is proactively
// renewed, so a call doesn't race the cloud rejecting it with code 16.
const jwtRenewalWindow = 30 * time.Second

func (t *NeedsRestartTask) Invoke(ctx context.Context) (time.Duration, bool, error) {
	if t.Client.ExpiresSoon(time.Now(), jwtRenewalWindow) {
		if err := t.Client.Authenticate(ctx); err != nil {
			return 0, false, err
		}
	}

	wait, ok, err := t.Client.NeedsRestart(ctx)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		t.OnRestart()
		return defaultRestartCheckInterval, true, nil
	}
	return wait, true, nil
}

// CertificateTask periodically refreshes the LAN TLS certificate from the
// cloud and persists it to storage. OnRenewed, if set, is called with the
// freshly stored cert/key so the HTTP/2 server can hot-swap without a
// restart.
type CertificateTask struct {
	Client        *Client
	Store         storage.Store
	RefreshPeriod time.Duration
	OnRenewed     func(cert, key []byte)
}

func (t *CertificateTask) Name() string { return "certificate" }
func (t *CertificateTask) DefaultPeriod() time.Duration {
	if t.RefreshPeriod <= 0 {
		return time.Hour
	}
	return t.RefreshPeriod
}

type storedCertificate struct {
	Cert []byte `json:"cert"`
	Key  []byte `json:"key"`
}

func (t *CertificateTask) Invoke(ctx context.Context) (time.Duration, bool, error) {
	slot, cert, key, err := t.Client.Certificate(ctx)
	if err != nil {
		return 0, false, err
	}
	b, err := json.Marshal(storedCertificate{Cert: cert, Key: key})
	if err != nil {
		return 0, false, fmt.Errorf("encoding certificate: %w", err)
	}
	if err := t.Store.Put(ctx, slot, b); err != nil {
		return 0, false, fmt.Errorf("storing certificate: %w", err)
	}
	if t.OnRenewed != nil {
		t.OnRenewed(cert, key)
	}
	return 0, false, nil
}

// LoadStoredCertificate decodes the cert/key pair CertificateTask last wrote.
func LoadStoredCertificate(ctx context.Context, s storage.Store) (cert, key []byte, ok bool, err error) {
	b, ok, err := s.Get(ctx, storage.SlotTLSCertificate)
	if err != nil || !ok {
		return nil, nil, ok, err
	}
	var sc storedCertificate
	if err := json.Unmarshal(b, &sc); err != nil {
		return nil, nil, false, fmt.Errorf("decoding stored certificate: %w", err)
	}
	return sc.Cert, sc.Key, true, nil
}

// LogEntry is one log record pushed to the cloud (spec.md §4.G "Log").
type LogEntry = map[string]interface{}

// LogTask drains a queue of pending log entries to the cloud every period.
// Entries accumulated between ticks are batched into one Log call.
type LogTask struct {
	Client *Client
	Period time.Duration
	Drain  func() []LogEntry
}

func (t *LogTask) Name() string { return "log" }
func (t *LogTask) DefaultPeriod() time.Duration {
	if t.Period <= 0 {
		return 10 * time.Second
	}
	return t.Period
}

func (t *LogTask) Invoke(ctx context.Context) (time.Duration, bool, error) {
	entries := t.Drain()
	if len(entries) == 0 {
		return 0, false, nil
	}
	if err := t.Client.Log(ctx, entries); err != nil {
		return 0, false, err
	}
	return 0, false, nil
}
