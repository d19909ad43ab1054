package util

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ContentHash returns the hex SHA-256 of the canonical JSON encoding of v.
// Used to key cached audit results by question content, so that identical
// content hashes identically regardless of which question carries it.
func ContentHash(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
