package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag builds a weak validator from a document id and its last
// modification time.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time) string {
	h := sha1.New()
	h.Write(id[:])
	h.Write([]byte(strconv.FormatInt(updatedAt.UTC().UnixNano(), 10)))
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:12]) + `"`
}

// ETagMatches reports whether an If-None-Match header value matches etag.
// It handles lists and the "*" wildcard.
func ETagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag || "W/"+candidate == etag {
			return true
		}
	}
	return false
}
