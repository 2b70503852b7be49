package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Verifier validates administrator login attempts against the server-held
// passcode and issues the opaque token handed back on success.
type Verifier struct {
	passcode  string
	apiSecret string
}

// NewVerifier creates a verifier for the configured passcode and optional
// fixed token secret.
func NewVerifier(passcode, apiSecret string) *Verifier {
	return &Verifier{
		passcode:  passcode,
		apiSecret: apiSecret,
	}
}

// Verify reports whether candidate matches the configured passcode.
//
// Fails closed: when no passcode is configured, configured is false and ok
// is always false regardless of input. Callers use configured to log the
// misconfiguration distinctly; the caller-facing result is still a failure.
// Comparison is a plain equality check, not constant-time.
func (v *Verifier) Verify(candidate string) (ok, configured bool) {
	if v.passcode == "" {
		return false, false
	}
	return candidate == v.passcode, true
}

// IssueToken returns the credential handed to the client after a successful
// passcode exchange. With a fixed API secret configured the token is stable
// across restarts and shared by all admin sessions; otherwise a fresh random
// token is generated per call (not persisted, not reproducible).
func (v *Verifier) IssueToken() (string, error) {
	if v.apiSecret != "" {
		return v.apiSecret, nil
	}

	// 64 hex characters = 32 bytes of randomness
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
