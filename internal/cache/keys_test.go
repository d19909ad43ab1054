package cache

import "testing"

func TestAuditResultKey(t *testing.T) {
	key := AuditResultKey("abc123")
	want := "audit:result:abc123"
	if key != want {
		t.Errorf("AuditResultKey() = %s, want %s", key, want)
	}
}
