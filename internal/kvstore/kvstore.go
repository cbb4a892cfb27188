// Package kvstore provides the durable string-keyed value store backing
// client-side state: auth entries, in-progress answers, test history.
package kvstore

import "context"

// Store is an asynchronous key-value store of string values (JSON blobs
// by convention). Get reports presence via the bool; a missing key is
// not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
