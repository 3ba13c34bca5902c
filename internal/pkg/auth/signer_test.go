package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestCallbackSigner_Canonicalize(t *testing.T) {
	tests := []struct {
		name       string
		passphrase string
		params     map[string]string
		want       string
	}{
		{
			name:   "sorted and escaped",
			params: map[string]string{"status": "successful", "id": "ch_1", "note": "a b&c", "signature": "ignored"},
			want:   "id=ch_1&note=a+b%26c&status=successful",
		},
		{
			name:       "passphrase appended",
			passphrase: "pass word",
			params:     map[string]string{"id": "ch_1"},
			want:       "id=ch_1&passphrase=pass+word",
		},
		{
			name:   "empty",
			params: map[string]string{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := NewCallbackSigner("secret", tt.passphrase)
			if got := signer.Canonicalize(tt.params); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCallbackSigner_SignMatchesHMAC(t *testing.T) {
	signer := NewCallbackSigner("secret", "")
	params := map[string]string{"id": "pf_123", "status": "failed"}

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("id=pf_123&status=failed"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := signer.Sign(params); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCallbackSigner_Verify(t *testing.T) {
	signer := NewCallbackSigner("secret", "phrase")
	params := map[string]string{"id": "pf_123", "status": "successful"}
	params[SignatureField] = signer.Sign(params)

	if !signer.Verify(params) {
		t.Fatal("expected signature to verify")
	}

	upper := map[string]string{"id": "pf_123", "status": "successful", SignatureField: strings.ToUpper(params[SignatureField])}
	if !signer.Verify(upper) {
		t.Fatal("expected signature comparison to ignore hex case")
	}

	tampered := map[string]string{"id": "pf_123", "status": "failed", SignatureField: params[SignatureField]}
	if signer.Verify(tampered) {
		t.Fatal("expected tampered params to fail verification")
	}

	other := NewCallbackSigner("secret", "")
	if other.Verify(params) {
		t.Fatal("expected passphrase mismatch to fail verification")
	}

	if signer.Verify(map[string]string{"id": "pf_123"}) {
		t.Fatal("expected missing signature to fail verification")
	}
}

func TestCallbackSigner_NestedMetadata(t *testing.T) {
	s := NewCallbackSigner("secret", "")
	params := map[string]string{"id": "ch_1", "status": "successful", "metadata": `{"applicationId":"app-1"}`}

	want := "id=ch_1&metadata=%7B%22applicationId%22%3A%22app-1%22%7D&status=successful"
	if got := s.Canonicalize(params); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	params[SignatureField] = s.Sign(params)
	if !s.Verify(params) {
		t.Fatal("expected callback with flattened metadata to verify")
	}
}
