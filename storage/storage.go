// Package storage implements the four independently resettable persistent
// slots this agent needs across reboots: the robot's cloud credentials,
// its cached cloud configuration, its Wi-Fi credentials, and its DTLS/TLS
// certificate (spec.md §4.M "Credential/config storage"). Each slot's value
// is opaque bytes to this package; callers own their own encoding.
package storage

import "context"

// Slot names one of the four resettable persistence slots.
type Slot string

const (
	SlotRobotCredentials  Slot = "robot_credentials"
	SlotRobotConfiguration Slot = "robot_configuration"
	SlotWiFiCredentials   Slot = "wifi_credentials"
	SlotTLSCertificate    Slot = "tls_certificate"
)

// Store is the KV interface every persistence backend satisfies.
type Store interface {
	// Get returns the slot's stored bytes, or ok=false if the slot has never
	// been written (or was reset).
	Get(ctx context.Context, slot Slot) (value []byte, ok bool, err error)
	// Put writes value into slot, replacing whatever was there.
	Put(ctx context.Context, slot Slot, value []byte) error
	// Reset clears slot back to unwritten (spec.md §3 "may be reset only via
	// reset_robot_credentials" — generalized here to any slot since the
	// interface itself is slot-agnostic).
	Reset(ctx context.Context, slot Slot) error
}
