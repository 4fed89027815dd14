package identity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheTTL bounds how long a cached profile may be served. The
// state store additionally invalidates on every session change event, so
// the TTL only matters for out-of-band profile edits.
const DefaultCacheTTL = 5 * time.Minute

// CachingStore layers an in-process LRU and an optional shared Redis tier
// over a ProfileStore. Only positive results are cached: absence and
// failure always go back to the source, since "not found" is load-bearing
// for the resolution branch choice.
type CachingStore struct {
	source ProfileStore
	rdb    *redis.Client
	ttl    time.Duration

	profiles *lru.LRU[string, Profile]
	vendors  *lru.LRU[string, VendorProfile]
	staff    *lru.LRU[string, StaffProfile]
}

// CacheOption configures a CachingStore.
type CacheOption func(*CachingStore)

// WithRedis adds a shared Redis tier behind the in-process one.
func WithRedis(client *redis.Client) CacheOption {
	return func(c *CachingStore) { c.rdb = client }
}

// WithCacheTTL overrides DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachingStore) { c.ttl = ttl }
}

// NewCachingStore wraps source with caching. size bounds each record
// kind's L1 entries.
func NewCachingStore(source ProfileStore, size int, opts ...CacheOption) *CachingStore {
	if size < 16 {
		size = 16
	}
	c := &CachingStore{source: source, ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(c)
	}
	c.profiles = lru.NewLRU[string, Profile](size, nil, c.ttl)
	c.vendors = lru.NewLRU[string, VendorProfile](size, nil, c.ttl)
	c.staff = lru.NewLRU[string, StaffProfile](size, nil, c.ttl)
	return c
}

// GetProfile implements ProfileStore.
func (c *CachingStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	if p, ok := c.profiles.Get(id); ok {
		return &p, nil
	}
	key := "gatekeeper:profile:" + id
	var p Profile
	if c.redisGet(ctx, key, &p) {
		c.profiles.Add(id, p)
		return &p, nil
	}

	fresh, err := c.source.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	c.profiles.Add(id, *fresh)
	c.redisSet(ctx, key, fresh)
	return fresh, nil
}

// GetVendorProfile implements ProfileStore.
func (c *CachingStore) GetVendorProfile(ctx context.Context, profileID string) (*VendorProfile, error) {
	if v, ok := c.vendors.Get(profileID); ok {
		return &v, nil
	}
	key := "gatekeeper:vendor:" + profileID
	var v VendorProfile
	if c.redisGet(ctx, key, &v) {
		c.vendors.Add(profileID, v)
		return &v, nil
	}

	fresh, err := c.source.GetVendorProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	c.vendors.Add(profileID, *fresh)
	c.redisSet(ctx, key, fresh)
	return fresh, nil
}

// GetStaffProfile implements ProfileStore.
func (c *CachingStore) GetStaffProfile(ctx context.Context, profileID string) (*StaffProfile, error) {
	if s, ok := c.staff.Get(profileID); ok {
		return &s, nil
	}
	key := "gatekeeper:staff:" + profileID
	var s StaffProfile
	if c.redisGet(ctx, key, &s) {
		c.staff.Add(profileID, s)
		return &s, nil
	}

	fresh, err := c.source.GetStaffProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	c.staff.Add(profileID, *fresh)
	c.redisSet(ctx, key, fresh)
	return fresh, nil
}

// Invalidate drops every cached record for a profile id, in both tiers.
// The auth state store calls this on each session change event so a role
// change can never be served stale sub-profiles.
func (c *CachingStore) Invalidate(ctx context.Context, profileID string) {
	c.profiles.Remove(profileID)
	c.vendors.Remove(profileID)
	c.staff.Remove(profileID)
	if c.rdb != nil {
		c.rdb.Del(ctx,
			"gatekeeper:profile:"+profileID,
			"gatekeeper:vendor:"+profileID,
			"gatekeeper:staff:"+profileID,
		)
	}
}

// redisGet loads key into out, reporting whether it hit. Redis failures
// degrade to a miss.
func (c *CachingStore) redisGet(ctx context.Context, key string, out interface{}) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// redisSet stores value under key, best effort.
func (c *CachingStore) redisSet(ctx context.Context, key string, value interface{}) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, raw, c.ttl)
}

var _ ProfileStore = (*CachingStore)(nil)
