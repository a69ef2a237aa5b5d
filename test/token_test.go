package test

import (
	"GoVault/utils"
	"strings"
	"testing"
)

// TestNewShareToken checks token length, charset and that collisions do not
// show up across a reasonable number of draws.
func TestNewShareToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token := utils.NewShareToken()
		// 24 random bytes in unpadded base64url.
		if len(token) != 32 {
			t.Fatalf("token length = %d, want 32", len(token))
		}
		if strings.ContainsAny(token, "+/=") {
			t.Fatalf("token %q contains non-URL-safe characters", token)
		}
		if _, ok := seen[token]; ok {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}
