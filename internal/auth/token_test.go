package auth_test

import (
	"encoding/base64"
	"testing"

	"github.com/booknest/booknest/internal/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	token := auth.EncodeToken(42)

	id, err := auth.DecodeToken(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected user id 42, got %d", id)
	}
}

func TestDecodeToken_RawPayload(t *testing.T) {
	// The token is nothing more than base64 JSON; a hand-built one decodes.
	token := base64.StdEncoding.EncodeToString([]byte(`{"userId": 7}`))

	id, err := auth.DecodeToken(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected user id 7, got %d", id)
	}
}

func TestDecodeToken_Invalid(t *testing.T) {
	cases := []string{
		"not base64 at all!!!",
		base64.StdEncoding.EncodeToString([]byte(`not json`)),
		base64.StdEncoding.EncodeToString([]byte(`{"userId": 0}`)),
		base64.StdEncoding.EncodeToString([]byte(`{"userId": -3}`)),
		"",
	}

	for _, token := range cases {
		if _, err := auth.DecodeToken(token); err == nil {
			t.Errorf("expected error for token %q", token)
		}
	}
}
