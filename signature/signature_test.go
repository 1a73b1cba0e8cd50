package signature_test

import (
	"strings"
	"testing"
	"time"

	"github.com/xraph/hookstream/signature"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	payload := []byte(`{"a":1}`)
	secret := "whsec_test"
	ts := time.Now().Unix()

	sig := signature.Sign(payload, secret, ts)
	if !strings.HasPrefix(sig, "v1=") {
		t.Fatalf("expected versioned signature, got %q", sig)
	}

	if !signature.Verify(payload, secret, ts, sig) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifyRejectsTamper(t *testing.T) {
	secret := "whsec_test"
	ts := time.Now().Unix()
	sig := signature.Sign([]byte("original"), secret, ts)

	if signature.Verify([]byte("tampered"), secret, ts, sig) {
		t.Fatal("expected tampered payload to fail")
	}
	if signature.Verify([]byte("original"), "whsec_other", ts, sig) {
		t.Fatal("expected wrong secret to fail")
	}
	if signature.Verify([]byte("original"), secret, ts+1, sig) {
		t.Fatal("expected wrong timestamp to fail")
	}
}

func TestVerifyWithTolerance(t *testing.T) {
	payload := []byte("data")
	secret := "whsec_test"

	fresh := time.Now().Unix()
	if err := signature.VerifyWithTolerance(payload, secret, fresh, signature.Sign(payload, secret, fresh), 5*time.Minute); err != nil {
		t.Fatalf("expected fresh signature to verify, got %v", err)
	}

	stale := time.Now().Add(-time.Hour).Unix()
	err := signature.VerifyWithTolerance(payload, secret, stale, signature.Sign(payload, secret, stale), 5*time.Minute)
	if err == nil {
		t.Fatal("expected stale timestamp to be rejected")
	}

	// Zero tolerance disables the timestamp check.
	if err := signature.VerifyWithTolerance(payload, secret, stale, signature.Sign(payload, secret, stale), 0); err != nil {
		t.Fatalf("expected zero tolerance to skip timestamp check, got %v", err)
	}
}

func TestGenerateSecret(t *testing.T) {
	secret := signature.GenerateSecret()
	if !strings.HasPrefix(secret, "whsec_") {
		t.Fatalf("expected whsec_ prefix, got %q", secret)
	}
	if len(secret) != len("whsec_")+64 {
		t.Fatalf("unexpected secret length %d", len(secret))
	}
	if secret == signature.GenerateSecret() {
		t.Fatal("expected distinct secrets")
	}
}

func TestGenerateToken(t *testing.T) {
	token := signature.GenerateToken()
	if !strings.HasPrefix(token, "whtok_") {
		t.Fatalf("expected whtok_ prefix, got %q", token)
	}
}
