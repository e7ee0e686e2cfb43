// README: Identity service tests: signup, login, onboarding.
package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridenow/internal/auth"
	"ridenow/internal/types"
)

type memStore struct {
	users   map[types.ID]*User
	riders  map[types.ID]*Rider // keyed by rider id
	drivers map[types.ID]*Driver
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[types.ID]*User),
		riders:  make(map[types.ID]*Rider),
		drivers: make(map[types.ID]*Driver),
	}
}

func (m *memStore) CreateUser(_ context.Context, u *User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindUserByID(_ context.Context, id types.ID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) AddRole(_ context.Context, userID types.ID, role Role) error {
	u := m.users[userID]
	if u != nil && !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
	return nil
}

func (m *memStore) CreateRider(_ context.Context, r *Rider) error {
	cp := *r
	m.riders[r.ID] = &cp
	return nil
}

func (m *memStore) FindRiderByUserID(_ context.Context, userID types.ID) (*Rider, error) {
	for _, r := range m.riders {
		if r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindRiderByID(_ context.Context, id types.ID) (*Rider, error) {
	r, ok := m.riders[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) UpdateRiderRating(_ context.Context, id types.ID, rating float64) error {
	if r, ok := m.riders[id]; ok {
		r.Rating = rating
	}
	return nil
}

func (m *memStore) CreateDriver(_ context.Context, d *Driver) error {
	cp := *d
	m.drivers[d.ID] = &cp
	return nil
}

func (m *memStore) FindDriverByID(_ context.Context, id types.ID) (*Driver, error) {
	d, ok := m.drivers[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) FindDriverByUserID(_ context.Context, userID types.ID) (*Driver, error) {
	for _, d := range m.drivers {
		if d.UserID == userID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) SetDriverAvailability(_ context.Context, id types.ID, available bool) error {
	if d, ok := m.drivers[id]; ok {
		d.Available = available
	}
	return nil
}

func (m *memStore) UpdateDriverLocation(_ context.Context, id types.ID, loc types.Point) error {
	if d, ok := m.drivers[id]; ok {
		d.Location = loc
	}
	return nil
}

func (m *memStore) UpdateDriverRating(_ context.Context, id types.ID, rating float64) error {
	if d, ok := m.drivers[id]; ok {
		d.Rating = rating
	}
	return nil
}

type countingWallets struct {
	created []types.ID
}

func (c *countingWallets) CreateWallet(_ context.Context, userID types.ID) error {
	c.created = append(c.created, userID)
	return nil
}

func newTestService() (*Service, *memStore, *countingWallets) {
	store := newMemStore()
	wallets := &countingWallets{}
	tokens := auth.NewTokenIssuer("test-secret", 15*time.Minute, 24*time.Hour)
	return NewService(store, tokens, wallets), store, wallets
}

func TestSignupCreatesRiderAndWallet(t *testing.T) {
	svc, store, wallets := newTestService()
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupCommand{
		Name:     "Alice",
		Email:    "alice@example.com",
		Phone:    "+886900000000",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.Equal(t, []Role{RoleRider}, user.Roles)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	rider, err := svc.FindRiderByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, rider.UserID)

	assert.Equal(t, []types.ID{user.ID}, wallets.created)
	assert.Len(t, store.users, 1)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupCommand{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupCommand{Name: "Imposter", Email: "alice@example.com", Password: "other-pass"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Len(t, store.users, 1, "duplicate signup must not create a second user")
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupCommand{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshReissuesAccessToken(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupCommand{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, err = svc.Refresh(ctx, "not-a-token")
	require.Error(t, err)
}

func TestOnboardDriver(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupCommand{Name: "Bob", Email: "bob@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	driver, err := svc.OnboardDriver(ctx, user.ID, "vehicle-1")
	require.NoError(t, err)
	assert.True(t, driver.Available)
	assert.Zero(t, driver.Rating)
	assert.Equal(t, "vehicle-1", driver.VehicleID)

	got, err := svc.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, got.HasRole(RoleDriver))
	assert.True(t, got.HasRole(RoleRider), "onboarding keeps the existing rider role")

	_, err = svc.OnboardDriver(ctx, user.ID, "vehicle-2")
	require.ErrorIs(t, err, ErrConflict)
}

func TestOnboardDriverUnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.OnboardDriver(context.Background(), "ghost", "vehicle-1")
	require.ErrorIs(t, err, ErrNotFound)
}
