package app

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.viam.com/test"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClampRestartInterval(t *testing.T) {
	test.That(t, clampRestartInterval(0, 0), test.ShouldEqual, minRestartCheckInterval)
	test.That(t, clampRestartInterval(-1, 0), test.ShouldEqual, defaultRestartCheckInterval)
	test.That(t, clampRestartInterval(0, 500), test.ShouldEqual, minRestartCheckInterval)
	test.That(t, clampRestartInterval(30, 0), test.ShouldEqual, 30*time.Second)
}

func TestSetJWTParsesExpiryAndExpiresSoonReportsWindow(t *testing.T) {
	c := &Client{}
	exp := time.Now().Add(time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	test.That(t, err, test.ShouldBeNil)

	c.setJWT("Bearer "+raw, raw)
	test.That(t, c.ExpiresSoon(exp.Add(-2*time.Minute), time.Minute), test.ShouldBeFalse)
	test.That(t, c.ExpiresSoon(exp.Add(-30*time.Second), time.Minute), test.ShouldBeTrue)
}

func TestShouldDropClassifiesGrpcCodes(t *testing.T) {
	test.That(t, ShouldDrop(classify(status.Error(codes.Unauthenticated, "bad token"))), test.ShouldBeTrue)
	test.That(t, ShouldDrop(classify(status.Error(codes.PermissionDenied, "nope"))), test.ShouldBeTrue)
	test.That(t, ShouldDrop(classify(status.Error(codes.Unavailable, "no route"))), test.ShouldBeTrue)
	test.That(t, ShouldDrop(classify(status.Error(codes.InvalidArgument, "bad request"))), test.ShouldBeFalse)
	test.That(t, ShouldDrop(errors.New("unrelated")), test.ShouldBeFalse)
}
