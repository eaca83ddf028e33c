package storage

import (
	"context"
	"fmt"
)

// allSlots lists every resettable persistence slot this agent keeps across
// reboots, mirroring the independent has_*/store_*/get_*/reset_* method sets
// credentials_storage.rs's WifiCredentialStorage and RobotConfigurationStorage
// traits declare per slot (robot_credentials, robot_configuration,
// wifi_credentials, tls_certificate). The Rust source never combines these
// into a single reset call; ResetAll is this agent's own generalization of
// that per-slot pattern, not a port of any one function there.
var allSlots = []Slot{
	SlotRobotCredentials,
	SlotRobotConfiguration,
	SlotWiFiCredentials,
	SlotTLSCertificate,
}

// ResetAll clears every slot, returning unwritten the way a freshly
// provisioned device starts (spec.md §3's "factory reset" path: the agent
// forgets its cloud identity, cached config, Wi-Fi credentials, and LAN
// certificate together so it re-enters provisioning from scratch). It stops
// at the first slot that fails to reset rather than attempting the
// remainder, since a partial reset leaves ambiguous state for the caller to
// reason about.
func ResetAll(ctx context.Context, s Store) error {
	for _, slot := range allSlots {
		if err := s.Reset(ctx, slot); err != nil {
			return fmt.Errorf("resetting slot %s: %w", slot, err)
		}
	}
	return nil
}

// HasRobotCredentials reports whether SlotRobotCredentials currently holds a
// value, the Go counterpart of credentials_storage.rs's has_robot_credentials.
func HasRobotCredentials(ctx context.Context, s Store) (bool, error) {
	_, ok, err := s.Get(ctx, SlotRobotCredentials)
	return ok, err
}

// HasWiFiCredentials reports whether SlotWiFiCredentials currently holds a
// value (credentials_storage.rs's has_wifi_credentials).
func HasWiFiCredentials(ctx context.Context, s Store) (bool, error) {
	_, ok, err := s.Get(ctx, SlotWiFiCredentials)
	return ok, err
}
