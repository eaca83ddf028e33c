package storage_test

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/storage"
)

func TestFileStoreRoundTripAndReset(t *testing.T) {
	s, err := storage.NewFileStore(t.TempDir())
	test.That(t, err, test.ShouldBeNil)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, storage.SlotTLSCertificate)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, s.Put(ctx, storage.SlotTLSCertificate, []byte("cert-bytes")), test.ShouldBeNil)
	got, ok, err := s.Get(ctx, storage.SlotTLSCertificate)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, string(got), test.ShouldEqual, "cert-bytes")

	test.That(t, s.Reset(ctx, storage.SlotTLSCertificate), test.ShouldBeNil)
	_, ok, err = s.Get(ctx, storage.SlotTLSCertificate)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestRobotCredentialsRoundTrip(t *testing.T) {
	s, err := storage.NewFileStore(t.TempDir())
	test.That(t, err, test.ShouldBeNil)
	ctx := context.Background()

	want := storage.RobotCredentials{RobotID: "r1", RobotSecret: "s3cr3t", AppAddress: "app.viam.test:443"}
	test.That(t, storage.StoreRobotCredentials(ctx, s, want), test.ShouldBeNil)

	got, ok, err := storage.LoadRobotCredentials(ctx, s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, got, test.ShouldResemble, want)
}

func TestResetAllClearsEverySlot(t *testing.T) {
	s, err := storage.NewFileStore(t.TempDir())
	test.That(t, err, test.ShouldBeNil)
	ctx := context.Background()

	test.That(t, storage.StoreRobotCredentials(ctx, s, storage.RobotCredentials{RobotID: "r1"}), test.ShouldBeNil)
	test.That(t, storage.StoreWiFiCredentials(ctx, s, storage.WiFiCredentials{SSID: "net"}), test.ShouldBeNil)
	test.That(t, s.Put(ctx, storage.SlotRobotConfiguration, []byte("cfg")), test.ShouldBeNil)
	test.That(t, s.Put(ctx, storage.SlotTLSCertificate, []byte("cert")), test.ShouldBeNil)

	hasCreds, err := storage.HasRobotCredentials(ctx, s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasCreds, test.ShouldBeTrue)

	test.That(t, storage.ResetAll(ctx, s), test.ShouldBeNil)

	hasCreds, err = storage.HasRobotCredentials(ctx, s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasCreds, test.ShouldBeFalse)

	hasWiFi, err := storage.HasWiFiCredentials(ctx, s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hasWiFi, test.ShouldBeFalse)

	_, ok, err := s.Get(ctx, storage.SlotRobotConfiguration)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)

	_, ok, err = s.Get(ctx, storage.SlotTLSCertificate)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
}
