// Package store defines the persistence boundary for the memory tiers.
// Any backend offering key get/set, hash-field get/set and list
// push/trim/range satisfies the contract.
package store

import "context"

// Store is the minimal set of primitives the memory tiers are built on.
// A missing key is not an error: Get returns "", HGetAll returns an empty
// map, LRange returns an empty slice.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error

	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key, field, value string) error
	Del(ctx context.Context, key string) error

	// LPush inserts at the head (newest-first ordering)
	LPush(ctx context.Context, key, value string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ScanKeys returns up to limit keys beginning with prefix
	ScanKeys(ctx context.Context, prefix string, limit int) ([]string, error)
}
