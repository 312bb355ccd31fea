package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// signaturePrefix is the algorithm tag GitHub puts in X-Hub-Signature-256.
const signaturePrefix = "sha256="

// verifySignature verifies a GitHub-style HMAC-SHA256 signature against the
// raw request body.
//
// The signature must carry the literal "sha256=" prefix; any other form is
// rejected before any HMAC computation. Comparison uses crypto/subtle to
// prevent timing attacks. All errors are generic to prevent information
// leakage.
func verifySignature(body []byte, signature, secret string) error {
	if secret == "" {
		return fmt.Errorf("webhook verification failed")
	}

	if !strings.HasPrefix(signature, signaturePrefix) {
		return fmt.Errorf("webhook verification failed")
	}

	actualMAC, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		// Generic error - don't leak format details
		return fmt.Errorf("webhook verification failed")
	}

	// Compute HMAC-SHA256 of request body
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expectedMAC := mac.Sum(nil)

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare(expectedMAC, actualMAC) != 1 {
		return fmt.Errorf("webhook verification failed")
	}

	return nil
}

// computeExpectedSignature computes the HMAC-SHA256 signature for a body.
// Used for testing and validation. Returns hex-encoded signature.
func computeExpectedSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// formatGitHubSignature formats a hex signature in GitHub's X-Hub-Signature-256 format.
func formatGitHubSignature(hexSig string) string {
	return signaturePrefix + hexSig
}
