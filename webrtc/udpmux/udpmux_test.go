package udpmux

import (
	"context"
	"net"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/micro-rdk-agent/logging"
)

func TestClassifyStunVersusDtls(t *testing.T) {
	stunDatagram := make([]byte, 20)
	stunDatagram[0] = 0x00 // STUN message class/method high bits always < 2

	dtlsDatagram := make([]byte, 20)
	dtlsDatagram[0] = 0x17 // DTLS content type "application_data"

	tooShort := make([]byte, 5)

	lane, ok := classify(stunDatagram)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, lane, test.ShouldEqual, LaneSTUN)

	lane, ok = classify(dtlsDatagram)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, lane, test.ShouldEqual, LaneDTLS)

	_, ok = classify(tooShort)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestLaneAcquireIsExclusive(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	test.That(t, err, test.ShouldBeNil)
	defer conn.Close()

	m := New(conn, logging.NewTestLogger())
	defer m.Close()

	h1, ok := m.AcquireSTUNLane()
	test.That(t, ok, test.ShouldBeTrue)
	_, ok = m.AcquireSTUNLane()
	test.That(t, ok, test.ShouldBeFalse)

	h1.Release()
	h2, ok := m.AcquireSTUNLane()
	test.That(t, ok, test.ShouldBeTrue)
	defer h2.Release()
}

func TestMuxRoutesDatagramsToCorrectLane(t *testing.T) {
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	test.That(t, err, test.ShouldBeNil)
	defer serverConn.Close()

	clientConn, err := net.DialUDP("udp", nil, serverConn.LocalAddr().(*net.UDPAddr))
	test.That(t, err, test.ShouldBeNil)
	defer clientConn.Close()

	m := New(serverConn, logging.NewTestLogger())
	defer m.Close()

	stunLane, ok := m.AcquireSTUNLane()
	test.That(t, ok, test.ShouldBeTrue)
	dtlsLane, ok := m.AcquireDTLSLane()
	test.That(t, ok, test.ShouldBeTrue)

	stunPkt := make([]byte, 20)
	stunPkt[0] = 0x00
	dtlsPkt := make([]byte, 20)
	dtlsPkt[0] = 0x17

	_, err = clientConn.Write(stunPkt)
	test.That(t, err, test.ShouldBeNil)
	_, err = clientConn.Write(dtlsPkt)
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	gotStun, _, err := stunLane.Recv(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gotStun[0], test.ShouldEqual, byte(0x00))

	gotDtls, _, err := dtlsLane.Recv(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gotDtls[0], test.ShouldEqual, byte(0x17))
}
