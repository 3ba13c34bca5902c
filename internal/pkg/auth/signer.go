package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// SignatureField is the callback parameter carrying the signature itself.
const SignatureField = "signature"

// CallbackSigner signs and verifies payment gateway callback parameters.
//
// Parameters other than the signature are sorted by key, values are query
// escaped and joined as key=value pairs with "&". A configured passphrase is
// appended as a final passphrase pair. The digest is hex encoded HMAC-SHA256.
// Nested JSON values (objects, arrays) arrive here already flattened to their
// compact encoding/json text with object keys sorted, and are signed as that string.
type CallbackSigner struct {
	secret     []byte
	passphrase string
}

func NewCallbackSigner(secret, passphrase string) *CallbackSigner {
	return &CallbackSigner{secret: []byte(secret), passphrase: passphrase}
}

// Canonicalize builds the string that gets signed.
func (s *CallbackSigner) Canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == SignatureField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		pairs = append(pairs, k+"="+url.QueryEscape(params[k]))
	}
	if s.passphrase != "" {
		pairs = append(pairs, "passphrase="+url.QueryEscape(s.passphrase))
	}
	return strings.Join(pairs, "&")
}

func (s *CallbackSigner) Sign(params map[string]string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(s.Canonicalize(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether params carry a valid signature.
func (s *CallbackSigner) Verify(params map[string]string) bool {
	got := strings.ToLower(strings.TrimSpace(params[SignatureField]))
	if got == "" {
		return false
	}
	return hmac.Equal([]byte(s.Sign(params)), []byte(got))
}
