// Package fingerprint computes content fingerprints for uploaded clinical
// documents. The digest is a function of the exact byte stream, never of any
// text extracted from it.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Sum streams r through SHA-256 and returns the 64-character lowercase hex
// digest. The document is never held in memory in full. A read error aborts
// with no partial digest returned.
func Sum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
