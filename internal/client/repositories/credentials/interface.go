// Package credentials is the durable key/value store for the client's
// tokens, cached profile, and transient OTP markers. It persists across
// process restarts but is private to this machine.
package credentials

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
