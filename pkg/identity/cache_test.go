package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/gatekeeper/pkg/catalog"
)

// countingStore records fetch counts per record kind.
type countingStore struct {
	profiles map[string]*Profile
	vendors  map[string]*VendorProfile
	staff    map[string]*StaffProfile

	profileCalls int
	vendorCalls  int
	staffCalls   int
	err          error
}

func newCountingStore() *countingStore {
	return &countingStore{
		profiles: make(map[string]*Profile),
		vendors:  make(map[string]*VendorProfile),
		staff:    make(map[string]*StaffProfile),
	}
}

func (s *countingStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	s.profileCalls++
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (s *countingStore) GetVendorProfile(ctx context.Context, id string) (*VendorProfile, error) {
	s.vendorCalls++
	if v, ok := s.vendors[id]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (s *countingStore) GetStaffProfile(ctx context.Context, id string) (*StaffProfile, error) {
	s.staffCalls++
	if sp, ok := s.staff[id]; ok {
		return sp, nil
	}
	return nil, ErrNotFound
}

func TestCacheHitSkipsSource(t *testing.T) {
	src := newCountingStore()
	src.profiles["u-1"] = &Profile{ID: "u-1", Email: "u@vendora.test", Role: catalog.RoleCustomer}
	cache := NewCachingStore(src, 64)

	ctx := context.Background()
	first, err := cache.GetProfile(ctx, "u-1")
	require.NoError(t, err)
	second, err := cache.GetProfile(ctx, "u-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, src.profileCalls)
}

func TestNegativeResultsAreNotCached(t *testing.T) {
	src := newCountingStore()
	cache := NewCachingStore(src, 64)
	ctx := context.Background()

	_, err := cache.GetStaffProfile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cache.GetStaffProfile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, src.staffCalls)
}

func TestSourceErrorsPassThrough(t *testing.T) {
	src := newCountingStore()
	src.err = errors.New("db down")
	cache := NewCachingStore(src, 64)

	_, err := cache.GetProfile(context.Background(), "u-1")
	assert.EqualError(t, err, "db down")
}

func TestInvalidateDropsAllRecordKinds(t *testing.T) {
	src := newCountingStore()
	src.profiles["u-1"] = &Profile{ID: "u-1", Role: catalog.RoleVendor}
	src.vendors["u-1"] = &VendorProfile{ProfileID: "u-1", StoreName: "Acme"}
	cache := NewCachingStore(src, 64)
	ctx := context.Background()

	_, _ = cache.GetProfile(ctx, "u-1")
	_, _ = cache.GetVendorProfile(ctx, "u-1")

	cache.Invalidate(ctx, "u-1")

	_, _ = cache.GetProfile(ctx, "u-1")
	_, _ = cache.GetVendorProfile(ctx, "u-1")
	assert.Equal(t, 2, src.profileCalls)
	assert.Equal(t, 2, src.vendorCalls)
}

func TestRedisTierServesAcrossProcesses(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	src := newCountingStore()
	src.staff["s-1"] = &StaffProfile{
		ProfileID:   "s-1",
		Permissions: []catalog.Permission{catalog.PermSupportView},
		Active:      true,
	}

	ctx := context.Background()
	first := NewCachingStore(src, 64, WithRedis(client))
	_, err := first.GetStaffProfile(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 1, src.staffCalls)

	// A second instance with a cold L1 hits the shared Redis tier
	// instead of the source.
	second := NewCachingStore(src, 64, WithRedis(client))
	sp, err := second.GetStaffProfile(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Permission{catalog.PermSupportView}, sp.Permissions)
	assert.Equal(t, 1, src.staffCalls)
}

func TestRedisInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	src := newCountingStore()
	src.profiles["u-1"] = &Profile{ID: "u-1", Role: catalog.RoleCustomer}

	ctx := context.Background()
	cache := NewCachingStore(src, 64, WithRedis(client))
	_, _ = cache.GetProfile(ctx, "u-1")
	cache.Invalidate(ctx, "u-1")

	assert.False(t, mr.Exists("gatekeeper:profile:u-1"))
}

func TestCacheTTLExpires(t *testing.T) {
	src := newCountingStore()
	src.profiles["u-1"] = &Profile{ID: "u-1"}
	cache := NewCachingStore(src, 64, WithCacheTTL(20*time.Millisecond))
	ctx := context.Background()

	_, _ = cache.GetProfile(ctx, "u-1")
	time.Sleep(40 * time.Millisecond)
	_, _ = cache.GetProfile(ctx, "u-1")
	assert.Equal(t, 2, src.profileCalls)
}
