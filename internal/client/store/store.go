// Package store persists the client's auth state: access token, refresh
// token and the cached user record. It is the Go equivalent of the browser
// cookie jar the portal front end uses, including per-entry expiry.
package store

import (
	"context"
	"time"
)

// Key identifies one of the fixed storage slots. The names match the cookie
// names the gate middleware reads, so both sides agree on the contract.
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyUser         Key = "user"
)

// Keys lists every slot the store manages, in ClearAll order.
var Keys = []Key{KeyAccessToken, KeyRefreshToken, KeyUser}

// Store is the persistence contract for client auth state.
//
// Contract:
//   - Get returns (value, true) when the key is present and unexpired.
//   - Set writes one key with a time-to-live; ttl <= 0 means no expiry.
//   - Clear removes one key; clearing an absent key is not an error.
//   - ClearAll removes every key atomically.
//   - SaveAuth writes the token pair and the serialized user record as a
//     single atomic unit: no reader observes a token without its user.
type Store interface {
	Get(ctx context.Context, key Key) (string, bool, error)
	Set(ctx context.Context, key Key, value string, ttl time.Duration) error
	Clear(ctx context.Context, key Key) error
	ClearAll(ctx context.Context) error
	SaveAuth(ctx context.Context, access, refresh, user string, ttl time.Duration) error
}
