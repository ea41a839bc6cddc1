package membership_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/internal/pgtest"
	"github.com/dmitrymomot/tenantkit/pkg/membership"
)

func TestIntegration_SwitchActiveOrganization(t *testing.T) {
	t.Parallel()

	pool := pgtest.New(t)
	store := membership.NewStore(pgtest.Manager(pool))
	ctx := context.Background()

	user := pgtest.CreateUser(t, pool, "")
	a := pgtest.CreateOrganization(t, pool, "A")
	b := pgtest.CreateOrganization(t, pool, "B")
	c := pgtest.CreateOrganization(t, pool, "C")
	pgtest.CreateMembership(t, pool, user, a, true)
	pgtest.CreateMembership(t, pool, user, b, false)

	org, ok, err := store.ActiveOrganization(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a, org)

	require.NoError(t, store.SetActiveOrganization(ctx, user, b))
	org, _, err = store.ActiveOrganization(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, b, org)
	assert.Equal(t, 1, pgtest.ActiveMemberships(t, pool, user))

	require.NoError(t, store.SetActiveOrganization(ctx, user, b), "re-activating the active organization is a no-op")
	assert.Equal(t, 1, pgtest.ActiveMemberships(t, pool, user))

	err = store.SetActiveOrganization(ctx, user, c)
	assert.ErrorIs(t, err, membership.ErrMembershipNotFound)
	org, _, err = store.ActiveOrganization(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, b, org, "failed switch must not change the active organization")

	list, err := store.ListMemberships(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestIntegration_ConcurrentSwitches(t *testing.T) {
	t.Parallel()

	pool := pgtest.New(t)
	store := membership.NewStore(pgtest.Manager(pool))
	ctx := context.Background()

	user := pgtest.CreateUser(t, pool, "")
	orgs := make([]string, 4)
	for i := range orgs {
		orgs[i] = pgtest.CreateOrganization(t, pool, "org")
		pgtest.CreateMembership(t, pool, user, orgs[i], i == 0)
	}

	const switches = 40
	var wg sync.WaitGroup
	wg.Add(switches)
	for i := range switches {
		go func() {
			defer wg.Done()
			assert.NoError(t, store.SetActiveOrganization(ctx, user, orgs[i%len(orgs)]))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, pgtest.ActiveMemberships(t, pool, user))
}

func TestIntegration_MembershipsAreScopedToTheCaller(t *testing.T) {
	t.Parallel()

	pool := pgtest.New(t)
	store := membership.NewStore(pgtest.Manager(pool))
	ctx := context.Background()

	alice := pgtest.CreateUser(t, pool, "")
	bob := pgtest.CreateUser(t, pool, "")
	org := pgtest.CreateOrganization(t, pool, "shared")
	pgtest.CreateMembership(t, pool, alice, org, true)

	_, ok, err := store.ActiveOrganization(ctx, bob)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, store.SetActiveOrganization(ctx, bob, org), membership.ErrMembershipNotFound)
}
