// README: Identity service: signup, login, token refresh, driver onboarding.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridenow/internal/auth"
	"ridenow/internal/types"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrConflict           = errors.New("user conflict")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// WalletCreator opens a wallet for a freshly signed-up user.
type WalletCreator interface {
	CreateWallet(ctx context.Context, userID types.ID) error
}

type Service struct {
	store   Store
	tokens  *auth.TokenIssuer
	wallets WalletCreator
}

func NewService(store Store, tokens *auth.TokenIssuer, wallets WalletCreator) *Service {
	return &Service{store: store, tokens: tokens, wallets: wallets}
}

type SignupCommand struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Signup creates a User with the RIDER role plus its Rider profile and
// wallet. A taken email is a conflict.
func (s *Service) Signup(ctx context.Context, cmd SignupCommand) (*User, error) {
	existing, err := s.store.FindUserByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email %s already registered", ErrConflict, cmd.Email)
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           types.ID(uuid.NewString()),
		Name:         cmd.Name,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		PasswordHash: hash,
		Roles:        []Role{RoleRider},
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	rider := &Rider{ID: types.ID(uuid.NewString()), UserID: user.ID}
	if err := s.store.CreateRider(ctx, rider); err != nil {
		return nil, err
	}
	if err := s.wallets.CreateWallet(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, roleStrings(user.Roles))
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh re-issues an access token from a valid refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyToken(refreshToken)
	if err != nil {
		return "", err
	}
	user, err := s.store.FindUserByID(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("%w: id %s", ErrNotFound, claims.UserID)
	}
	return s.tokens.GenerateAccessToken(user.ID, roleStrings(user.Roles))
}

// OnboardDriver adds the DRIVER role to an existing user and creates the
// Driver profile, available and unrated.
func (s *Service) OnboardDriver(ctx context.Context, userID types.ID, vehicleID string) (*Driver, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, userID)
	}
	if user.HasRole(RoleDriver) {
		return nil, fmt.Errorf("%w: user %s is already a driver", ErrConflict, userID)
	}

	if err := s.store.AddRole(ctx, userID, RoleDriver); err != nil {
		return nil, err
	}
	driver := &Driver{
		ID:        types.ID(uuid.NewString()),
		UserID:    userID,
		Rating:    0,
		Available: true,
		VehicleID: vehicleID,
	}
	if err := s.store.CreateDriver(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: email %s", ErrNotFound, email)
	}
	return user, nil
}

func (s *Service) Roles(ctx context.Context, email string) ([]Role, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}

func (s *Service) FindRiderByUserID(ctx context.Context, userID types.ID) (*Rider, error) {
	rider, err := s.store.FindRiderByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rider == nil {
		return nil, fmt.Errorf("%w: no rider profile for user %s", ErrNotFound, userID)
	}
	return rider, nil
}

func (s *Service) FindDriverByUserID(ctx context.Context, userID types.ID) (*Driver, error) {
	driver, err := s.store.FindDriverByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, fmt.Errorf("%w: no driver profile for user %s", ErrNotFound, userID)
	}
	return driver, nil
}

func (s *Service) FindDriverByID(ctx context.Context, id types.ID) (*Driver, error) {
	driver, err := s.store.FindDriverByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, fmt.Errorf("%w: driver %s", ErrNotFound, id)
	}
	return driver, nil
}

func (s *Service) FindRiderByID(ctx context.Context, id types.ID) (*Rider, error) {
	rider, err := s.store.FindRiderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rider == nil {
		return nil, fmt.Errorf("%w: rider %s", ErrNotFound, id)
	}
	return rider, nil
}

func (s *Service) SetDriverAvailability(ctx context.Context, id types.ID, available bool) error {
	return s.store.SetDriverAvailability(ctx, id, available)
}

func (s *Service) UpdateDriverLocation(ctx context.Context, id types.ID, loc types.Point) error {
	return s.store.UpdateDriverLocation(ctx, id, loc)
}

func (s *Service) UpdateDriverRating(ctx context.Context, id types.ID, rating float64) error {
	return s.store.UpdateDriverRating(ctx, id, rating)
}

func (s *Service) UpdateRiderRating(ctx context.Context, id types.ID, rating float64) error {
	return s.store.UpdateRiderRating(ctx, id, rating)
}

func roleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
