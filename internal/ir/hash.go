package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTrace separates trace digests from any other hashed content.
// The version suffix allows the digest input to evolve.
const DomainTrace = "marbles/trace/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns a stable content hash of v's canonical JSON.
// Two runs that observed identical timelines produce identical digests.
func Digest(v any) (string, error) {
	canonical, err := MarshalCanonical(Normalize(v))
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}
