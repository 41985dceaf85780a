// Package interfaces defines service contracts for twdash
package interfaces

import "context"

// KeyValueStore is the narrow client-local persisted state contract.
// Values are opaque serialized strings, fully replaced on every Set and
// removable independently. Get reports a missing key as an error. Any
// concrete storage (file, BadgerHold, in-memory map for tests)
// satisfies it.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	Close() error
}
