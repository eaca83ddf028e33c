package mdns_test

import (
	"context"
	"net"
	"testing"
	"time"

	"go.viam.com/test"
	"golang.org/x/net/dns/dnsmessage"

	"go.viam.com/micro-rdk-agent/logging"
	"go.viam.com/micro-rdk-agent/mdns"
)

func TestAdvertiserAnswersPTRQuery(t *testing.T) {
	adv, err := mdns.New("robot.viam.cloud", "robot.local", "192.168.1.50", 12346, logging.NewTestLogger())
	test.That(t, err, test.ShouldBeNil)
	defer adv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = adv.Serve(ctx)
	}()

	conn, err := net.Dial("udp4", "224.0.0.251:5353")
	test.That(t, err, test.ShouldBeNil)
	defer conn.Close()

	b := dnsmessage.NewBuilder(nil, dnsmessage.Header{ID: 42})
	test.That(t, b.StartQuestions(), test.ShouldBeNil)
	name, err := dnsmessage.NewName("_rpc._tcp.local.")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Question(dnsmessage.Question{Name: name, Type: dnsmessage.TypePTR, Class: dnsmessage.ClassINET}), test.ShouldBeNil)
	query, err := b.Finish()
	test.That(t, err, test.ShouldBeNil)

	_, err = conn.Write(query)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)), test.ShouldBeNil)
	buf := make([]byte, 9000)
	n, err := conn.Read(buf)
	test.That(t, err, test.ShouldBeNil)

	var resp dnsmessage.Message
	test.That(t, resp.Unpack(buf[:n]), test.ShouldBeNil)
	test.That(t, resp.Header.Response, test.ShouldBeTrue)
	test.That(t, len(resp.Answers) >= 2, test.ShouldBeTrue)
}

func TestNewRejectsOversizedLabel(t *testing.T) {
	oversized := make([]byte, 64)
	for i := range oversized {
		oversized[i] = 'a'
	}
	_, err := mdns.New(string(oversized)+".viam.cloud", "robot.local", "192.168.1.50", 12346, logging.NewTestLogger())
	test.That(t, err, test.ShouldNotBeNil)
}
