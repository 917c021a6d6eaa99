package records

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightwell-health/frontdesk/pkg/logging"
)

// rosterStore stubs the Store roster methods and counts calls.
type rosterStore struct {
	Store
	departments []string
	doctors     map[string][]Doctor
	err         error

	departmentCalls int
	doctorCalls     int
}

func (s *rosterStore) ListDepartments(ctx context.Context) ([]string, error) {
	s.departmentCalls++
	return s.departments, s.err
}

func (s *rosterStore) ListDoctors(ctx context.Context, department string) ([]Doctor, error) {
	s.doctorCalls++
	return s.doctors[department], s.err
}

func newCached(t *testing.T) (*CachedStore, *rosterStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := &rosterStore{
		departments: []string{"Cardiology", "Dermatology"},
		doctors: map[string][]Doctor{
			"":           {{ID: "d1", Name: "Dr. Adams", Department: "Cardiology"}, {ID: "d2", Name: "Dr. Baker", Department: "Dermatology"}},
			"Cardiology": {{ID: "d1", Name: "Dr. Adams", Department: "Cardiology"}},
		},
	}
	return NewCachedStore(store, client, logging.Discard()), store, mr
}

func TestCachedDepartmentsHitStoreOnce(t *testing.T) {
	cached, store, _ := newCached(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		deps, err := cached.ListDepartments(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cardiology", "Dermatology"}, deps)
	}
	assert.Equal(t, 1, store.departmentCalls)
}

func TestCachedDoctorsKeyedByDepartment(t *testing.T) {
	cached, store, _ := newCached(t)
	ctx := context.Background()

	all, err := cached.ListDoctors(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cardio, err := cached.ListDoctors(ctx, "Cardiology")
	require.NoError(t, err)
	require.Len(t, cardio, 1)
	assert.Equal(t, "Dr. Adams", cardio[0].Name)

	// Warm now; repeat lookups stay out of the store.
	_, _ = cached.ListDoctors(ctx, "")
	_, _ = cached.ListDoctors(ctx, "Cardiology")
	assert.Equal(t, 2, store.doctorCalls)
}

func TestCachedRosterExpires(t *testing.T) {
	cached, store, mr := newCached(t)
	ctx := context.Background()

	_, err := cached.ListDepartments(ctx)
	require.NoError(t, err)
	mr.FastForward(rosterTTL + time.Second)

	_, err = cached.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.departmentCalls)
}

func TestCacheOutageFallsThrough(t *testing.T) {
	cached, store, mr := newCached(t)
	ctx := context.Background()
	mr.Close()

	deps, err := cached.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiology", "Dermatology"}, deps)
	assert.Equal(t, 1, store.departmentCalls)
}
