package qr

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateTokenShape(t *testing.T) {
	tok, err := GenerateToken("S1", "type2", 22)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(tok) != TokenLength || !IsToken(tok) {
		t.Fatalf("token %q is not 32 lowercase hex chars", tok)
	}
}

func TestGenerateTokenDistinctForSameInput(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		tok, err := GenerateToken("S1", "type2", 22)
		if err != nil {
			t.Fatal(err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q after %d calls", tok, i)
		}
		seen[tok] = true
	}
}

func TestTokenFromIsSHA256Prefix(t *testing.T) {
	nonce := uuid.MustParse("00000000-0000-4000-8000-000000000000")
	a := tokenFrom("S1", "type2", 22, nonce)
	b := tokenFrom("S1", "type2", 22, nonce)
	if a != b {
		t.Fatal("same seed should hash to the same token")
	}
	if c := tokenFrom("S1", "type2", 50, nonce); c == a {
		t.Fatal("power rating must feed the hash")
	}
}

func TestIsToken(t *testing.T) {
	cases := map[string]bool{
		strings.Repeat("a", 32):            true,
		"0123456789abcdef0123456789abcdef": true,
		strings.Repeat("A", 32):            false,
		strings.Repeat("a", 31):            false,
		strings.Repeat("g", 32):            false,
	}
	for in, want := range cases {
		if got := IsToken(in); got != want {
			t.Errorf("IsToken(%q) = %v", in, got)
		}
	}
}

func TestPaymentURL(t *testing.T) {
	tok := strings.Repeat("f", 32)
	want := "https://example.test/api/payments/qr-initiate/" + tok + "/"
	for _, base := range []string{"https://example.test", "https://example.test/"} {
		if got := PaymentURL(base, tok); got != want {
			t.Errorf("PaymentURL(%q) = %q", base, got)
		}
	}
}

func TestDataURIIsPNG(t *testing.T) {
	uri, err := DataURI("https://example.test/api/payments/qr-initiate/" + strings.Repeat("0", 32) + "/")
	if err != nil {
		t.Fatalf("DataURI: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("payload is not a PNG")
	}
}

func TestDataURIRejectsEmpty(t *testing.T) {
	if _, err := DataURI(""); err == nil {
		t.Fatal("expected error for empty content")
	}
}
