package cache

import "fmt"

const auditResultPrefix = "audit:result:"

// AuditResultKey builds the cache key for an audit result, keyed by the
// SHA-256 hash of the canonical question content.
func AuditResultKey(contentHash string) string {
	return fmt.Sprintf("%s%s", auditResultPrefix, contentHash)
}
