package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// RobotCredentials is the cloud-assigned identity this agent authenticates
// with (spec.md §4.G "Authenticate"; grounded on original_source/micro-rdk/
// src/common/credentials_storage.rs's RobotCredentials).
type RobotCredentials struct {
	RobotID     string `json:"robot_id"`
	RobotSecret string `json:"robot_secret"`
	AppAddress  string `json:"app_address"`
}

// WiFiCredentials is the network the provisioning flow hands this agent
// (spec.md §4.M).
type WiFiCredentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// LoadRobotCredentials reads and JSON-decodes SlotRobotCredentials.
func LoadRobotCredentials(ctx context.Context, s Store) (RobotCredentials, bool, error) {
	var creds RobotCredentials
	b, ok, err := s.Get(ctx, SlotRobotCredentials)
	if err != nil || !ok {
		return creds, ok, err
	}
	if err := json.Unmarshal(b, &creds); err != nil {
		return creds, false, fmt.Errorf("decoding robot credentials: %w", err)
	}
	return creds, true, nil
}

// StoreRobotCredentials JSON-encodes and writes creds to SlotRobotCredentials.
func StoreRobotCredentials(ctx context.Context, s Store, creds RobotCredentials) error {
	b, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding robot credentials: %w", err)
	}
	return s.Put(ctx, SlotRobotCredentials, b)
}

// LoadWiFiCredentials reads and JSON-decodes SlotWiFiCredentials.
func LoadWiFiCredentials(ctx context.Context, s Store) (WiFiCredentials, bool, error) {
	var creds WiFiCredentials
	b, ok, err := s.Get(ctx, SlotWiFiCredentials)
	if err != nil || !ok {
		return creds, ok, err
	}
	if err := json.Unmarshal(b, &creds); err != nil {
		return creds, false, fmt.Errorf("decoding wifi credentials: %w", err)
	}
	return creds, true, nil
}

// StoreWiFiCredentials JSON-encodes and writes creds to SlotWiFiCredentials.
func StoreWiFiCredentials(ctx context.Context, s Store, creds WiFiCredentials) error {
	b, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding wifi credentials: %w", err)
	}
	return s.Put(ctx, SlotWiFiCredentials, b)
}
