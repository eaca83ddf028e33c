// Package app implements the cloud control-plane client of spec.md §4.G: a
// gRPC client carrying the robot's bearer JWT, plus the Start → Authenticate →
// Ready state machine that supervises the periodic tasks run against it and
// drops back to Start on an IO error or gRPC code 16 (unauthenticated) / 7
// (permission denied).
package app

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"go.viam.com/micro-rdk-agent/config"
	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/resource"
	"go.viam.com/micro-rdk-agent/storage"
)

// Credentials identifies this robot to the cloud control plane (spec.md §3
// "Credentials"; storage.RobotCredentials is the persisted form of the same
// data).
type Credentials struct {
	RobotID     string
	RobotSecret string
}

// Client is one gRPC connection to the cloud, plus the bearer token
// Authenticate populates. The zero value is not usable; build one with Dial.
type Client struct {
	conn        *grpc.ClientConn
	credentials Credentials
	logger      logging.Logger

	mu        sync.RWMutex
	jwt       string
	jwtExpiry time.Time
}

// Dial opens the underlying gRPC connection to address (e.g.
// "app.viam.com:443"). It does not authenticate; call Authenticate before
// issuing any other request.
func Dial(ctx context.Context, address string, creds Credentials, logger logging.Logger) (*Client, error) {
	conn, err := grpc.DialContext(ctx, address,
		grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(codec.RawCodec{})),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", address, err)
	}
	return &Client{conn: conn, credentials: creds, logger: logger}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// setJWT records the bearer header and, best-effort, the token's exp claim.
// The cloud's signing key isn't available to this agent, so the token is
// parsed unverified purely to read its expiry, never trusted for anything
// authorization-relevant.
func (c *Client) setJWT(bearer, rawToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jwt = bearer
	c.jwtExpiry = time.Time{}

	var claims jwt.MapClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(rawToken, &claims); err != nil {
		return
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.jwtExpiry = exp.Time
	}
}

// ExpiresSoon reports whether the current token's exp claim is within window
// of now, so a caller (e.g. a periodic task) can proactively reauthenticate
// instead of waiting for the cloud to reject a request with code 16.
func (c *Client) ExpiresSoon(now time.Time, window time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.jwtExpiry.IsZero() {
		return false
	}
	return !now.Before(c.jwtExpiry.Add(-window))
}

func (c *Client) outgoingContext(ctx context.Context, rpcHost string) context.Context {
	c.mu.RLock()
	jwt := c.jwt
	c.mu.RUnlock()

	pairs := make([]string, 0, 4)
	if jwt != "" {
		pairs = append(pairs, "authorization", jwt)
	}
	if rpcHost != "" {
		pairs = append(pairs, "rpc-host", rpcHost)
	}
	if len(pairs) == 0 {
		return ctx
	}
	return metadata.NewOutgoingContext(ctx, metadata.Pairs(pairs...))
}

// Authenticate exchanges the robot's secret for a bearer JWT (spec.md §4.G
// "Authenticate"). It must succeed once before any other method is called.
func (c *Client) Authenticate(ctx context.Context) error {
	reqBytes, err := encodeStruct(map[string]interface{}{
		"entity": c.credentials.RobotID,
		"credentials": map[string]interface{}{
			"type":    "robot-secret",
			"payload": c.credentials.RobotSecret,
		},
	})
	if err != nil {
		return err
	}

	var respBytes []byte
	if err := c.conn.Invoke(ctx, "/proto.rpc.v1.AuthService/Authenticate", reqBytes, &respBytes); err != nil {
		return classify(err)
	}

	resp, err := decodeStruct(respBytes)
	if err != nil {
		return err
	}
	token := resp.Fields["access_token"].GetStringValue()
	if token == "" {
		return fmt.Errorf("authenticate response carried no access_token")
	}
	c.setJWT("Bearer "+token, token)
	return nil
}

// GetConfig fetches the robot's declarative configuration (spec.md §4.G
// "GetConfig"). It also returns the time carried in the server's Date
// response header; the device clock is not set from it.
func (c *Client) GetConfig(ctx context.Context, agentInfo map[string]interface{}) (config.RobotConfig, time.Time, error) {
	reqBytes, err := encodeStruct(map[string]interface{}{
		"agent_info": agentInfo,
		"id":         c.credentials.RobotID,
	})
	if err != nil {
		return config.RobotConfig{}, time.Time{}, err
	}

	var respBytes []byte
	var header metadata.MD
	err = c.conn.Invoke(c.outgoingContext(ctx, ""), "/viam.app.v1.RobotService/Config", reqBytes, &respBytes, grpc.Header(&header))
	if err != nil {
		return config.RobotConfig{}, time.Time{}, classify(err)
	}

	resp, err := decodeStruct(respBytes)
	if err != nil {
		return config.RobotConfig{}, time.Time{}, err
	}

	var cfg config.RobotConfig
	if cfgValue, ok := resp.Fields["config"]; ok {
		k, err := resource.KindFromStructValue(cfgValue)
		if err != nil {
			return config.RobotConfig{}, time.Time{}, err
		}
		b, err := json.Marshal(k.ToInterface())
		if err != nil {
			return config.RobotConfig{}, time.Time{}, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return config.RobotConfig{}, time.Time{}, fmt.Errorf("decoding config: %w", err)
		}
	}

	var serverTime time.Time
	if dates := header.Get("date"); len(dates) > 0 {
		if t, err := parseRFC2822(dates[0]); err == nil {
			serverTime = t
		}
	}
	return cfg, serverTime, nil
}

// Log pushes a batch of log entries to the cloud (spec.md §4.G "Log").
func (c *Client) Log(ctx context.Context, entries []map[string]interface{}) error {
	logs := make([]interface{}, len(entries))
	for i, e := range entries {
		logs[i] = e
	}
	reqBytes, err := encodeStruct(map[string]interface{}{
		"id":   c.credentials.RobotID,
		"logs": logs,
	})
	if err != nil {
		return err
	}
	var respBytes []byte
	if err := c.conn.Invoke(c.outgoingContext(ctx, ""), "/viam.app.v1.RobotService/Log", reqBytes, &respBytes); err != nil {
		return classify(err)
	}
	return nil
}

const (
	minRestartCheckInterval     = time.Second
	defaultRestartCheckInterval = 5 * time.Second
)

// NeedsRestart polls whether this agent should restart (spec.md §4.G
// "NeedsRestart"). A returned ok=false means restart now; ok=true carries the
// duration to wait before polling again.
func (c *Client) NeedsRestart(ctx context.Context) (wait time.Duration, ok bool, err error) {
	reqBytes, err := encodeStruct(map[string]interface{}{"id": c.credentials.RobotID})
	if err != nil {
		return 0, false, err
	}
	var respBytes []byte
	if err := c.conn.Invoke(c.outgoingContext(ctx, ""), "/viam.app.v1.RobotService/NeedsRestart", reqBytes, &respBytes); err != nil {
		return 0, false, classify(err)
	}
	resp, err := decodeStruct(respBytes)
	if err != nil {
		return 0, false, err
	}

	if resp.Fields["must_restart"].GetBoolValue() {
		return 0, false, nil
	}

	interval, ok := resp.Fields["restart_check_interval"]
	if !ok {
		return defaultRestartCheckInterval, true, nil
	}
	seconds := interval.GetStructValue().GetFields()["seconds"].GetNumberValue()
	nanos := interval.GetStructValue().GetFields()["nanos"].GetNumberValue()
	return clampRestartInterval(seconds, nanos), true, nil
}

// clampRestartInterval applies spec.md §4.G's NeedsRestart clamp: a negative
// (and therefore unrepresentable) interval falls back to the 5s default; any
// valid nonnegative interval is floored at 1s rather than discarded.
func clampRestartInterval(seconds, nanos float64) time.Duration {
	if seconds < 0 || nanos < 0 {
		return defaultRestartCheckInterval
	}
	d := time.Duration(seconds)*time.Second + time.Duration(nanos)*time.Nanosecond
	if d < minRestartCheckInterval {
		return minRestartCheckInterval
	}
	return d
}

// Certificate fetches the TLS certificate and private key this agent serves
// its LAN gRPC socket with (spec.md §4.G "Certificate").
func (c *Client) Certificate(ctx context.Context) (storage.Slot, []byte, []byte, error) {
	reqBytes, err := encodeStruct(map[string]interface{}{"id": c.credentials.RobotID})
	if err != nil {
		return storage.SlotTLSCertificate, nil, nil, err
	}
	var respBytes []byte
	if err := c.conn.Invoke(c.outgoingContext(ctx, ""), "/viam.app.v1.RobotService/Certificate", reqBytes, &respBytes); err != nil {
		return storage.SlotTLSCertificate, nil, nil, classify(err)
	}
	resp, err := decodeStruct(respBytes)
	if err != nil {
		return storage.SlotTLSCertificate, nil, nil, err
	}
	cert := []byte(resp.Fields["tls_certificate"].GetStringValue())
	key := []byte(resp.Fields["tls_private_key"].GetStringValue())
	return storage.SlotTLSCertificate, cert, key, nil
}

// DataCaptureUpload flushes one collector's batch of captured readings to the
// cloud (spec.md §6 "/viam.app.datasync.v1.DataSyncService/DataCaptureUpload
// (optional)"; SPEC_FULL.md §2 data-capture DOMAIN+ feature). readings are
// already-encoded metadata+data maps so this package stays agnostic of
// package datacapture's Reading type, the same separation Log keeps from
// whatever accumulates its entries.
func (c *Client) DataCaptureUpload(ctx context.Context, partID, componentName, componentType, method string, readings []map[string]interface{}) error {
	data := make([]interface{}, len(readings))
	for i, r := range readings {
		data[i] = r
	}
	reqBytes, err := encodeStruct(map[string]interface{}{
		"metadata": map[string]interface{}{
			"part_id":        partID,
			"component_name": componentName,
			"component_type": componentType,
			"method_name":    method,
		},
		"sensor_contents": data,
	})
	if err != nil {
		return err
	}
	var respBytes []byte
	if err := c.conn.Invoke(c.outgoingContext(ctx, ""), "/viam.app.datasync.v1.DataSyncService/DataCaptureUpload", reqBytes, &respBytes); err != nil {
		return classify(err)
	}
	return nil
}

// classify wraps a gRPC error so callers can test IsIOError/IsUnauthenticated/
// IsPermissionDenied without threading grpc/codes through every caller
// (spec.md §4.G "Ready → (IO error | grpc code 16/7) → drop → Start").
func classify(err error) error {
	if err == nil {
		return nil
	}
	return &ClientError{err: err, code: status.Code(err)}
}

// ClientError is the error type every Client method returns on failure.
type ClientError struct {
	err  error
	code codes.Code
}

func (e *ClientError) Error() string { return e.err.Error() }
func (e *ClientError) Unwrap() error { return e.err }

// IsUnauthenticated reports gRPC code 16.
func (e *ClientError) IsUnauthenticated() bool { return e.code == codes.Unauthenticated }

// IsPermissionDenied reports gRPC code 7.
func (e *ClientError) IsPermissionDenied() bool { return e.code == codes.PermissionDenied }

// IsIOError reports a transport-level failure rather than a gRPC status
// response (spec.md §4.G "IO error").
func (e *ClientError) IsIOError() bool { return e.code == codes.Unavailable }

// ShouldDrop is the spec.md §4.G Ready→Start transition predicate.
func ShouldDrop(err error) bool {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.IsIOError() || ce.IsUnauthenticated() || ce.IsPermissionDenied()
}
