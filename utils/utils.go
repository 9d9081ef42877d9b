// Package utils holds small, dependency-free helpers shared across the
// generator and scorer packages.
package utils

import "go.mongodb.org/mongo-driver/bson/primitive"

// BytesToInt converts a byte slice (e.g., a SHA-256 digest) to an int64.
// Used for deriving a deterministic generator seed from a hash.
func BytesToInt(b []byte) int64 {
	var i int64
	for idx, val := range b {
		if idx >= 8 {
			break
		}
		i = (i << 8) | int64(val)
	}
	return i
}

// ContainsID reports whether id appears in ids.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// ContainsString reports whether s appears in the slice.
func ContainsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
