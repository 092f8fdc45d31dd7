package auth

import "context"

// SetPlayerIDForTest injects a player id into the context the way
// RequirePlayer would, without needing a signed token. Test-only.
func SetPlayerIDForTest(ctx context.Context, playerID int) context.Context {
	return context.WithValue(ctx, playerIDKey, playerID)
}
