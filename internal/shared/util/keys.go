package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// HashUserKey hashes a user ID into a filesystem and S3 safe hex string.
// User IDs carry provider prefixes like "google:" that are not safe in keys.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// SanitizeFileName strips path separators from a client-supplied file name
// and rejects traversal attempts.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	cleaned := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		return "", errors.New("invalid file name")
	}
	return cleaned, nil
}
