// Package session holds the operator identity and bearer token.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/persist"
)

const persistKey = "user"

const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
)

var (
	ErrMissingRole  = errors.New("session: token carries no role")
	ErrInvalidToken = errors.New("session: invalid token")
)

type State struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	AvatarURL string    `json:"avatarUrl"`
	StoreID   string    `json:"storeId"`
	StoreName string    `json:"storeName"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// DisplayName prefers the nickname.
func (s State) DisplayName() string {
	if s.Nickname != "" {
		return s.Nickname
	}
	return s.Username
}

type Claims struct {
	UID       string `json:"uid"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl"`
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	jwt.RegisteredClaims
}

type Authenticator interface {
	Login(ctx context.Context, p api.LoginParams) (*api.LoginResult, error)
}

type Store struct {
	mu        sync.RWMutex
	state     State
	persist   persist.Persister
	jwtSecret string
	now       func() time.Time
}

// NewStore builds the session store. With an empty jwtSecret token claims are
// read without signature verification; the upstream API stays the authority.
func NewStore(p persist.Persister, jwtSecret string) *Store {
	return &Store{persist: p, jwtSecret: jwtSecret, now: time.Now}
}

// Restore loads the persisted session, if any.
func (s *Store) Restore(ctx context.Context) error {
	var st State
	ok, err := s.persist.Load(ctx, persistKey, &st)
	if err != nil {
		return err
	}
	if ok {
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
	}
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Role
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports a present, unexpired token.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Token == "" {
		return false
	}
	return s.state.ExpiresAt.IsZero() || s.now().Before(s.state.ExpiresAt)
}

func (s *Store) Login(ctx context.Context, auth Authenticator, username, password string) (State, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return State{}, errors.New("session: username and password required")
	}
	res, err := auth.Login(ctx, api.LoginParams{Username: username, Password: password})
	if err != nil {
		return State{}, err
	}

	claims, err := s.parseClaims(res.Token)
	if err != nil {
		return State{}, err
	}
	if claims.Role == "" {
		return State{}, ErrMissingRole
	}

	st := State{
		UID:       claims.UID,
		Username:  claims.Username,
		Nickname:  claims.Nickname,
		Role:      claims.Role,
		Token:     res.Token,
		AvatarURL: claims.AvatarURL,
		StoreID:   claims.StoreID,
		StoreName: claims.StoreName,
	}
	if st.UID == "" {
		st.UID = claims.Subject
	}
	if st.Username == "" {
		st.Username = username
	}
	if claims.ExpiresAt != nil {
		st.ExpiresAt = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	logger.Infof("[session] %s logged in as %s", st.DisplayName(), st.Role)
	return st, s.save(ctx)
}

func (s *Store) parseClaims(token string) (*Claims, error) {
	var claims Claims
	if s.jwtSecret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
			return nil, errors.Wrap(ErrInvalidToken, err.Error())
		}
		return &claims, nil
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	return &claims, nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.state.Token = token
	s.mu.Unlock()
	return s.save(ctx)
}

// SetUser merges the non-empty fields of u into the current state.
func (s *Store) SetUser(ctx context.Context, u State) error {
	s.mu.Lock()
	merge(&s.state.UID, u.UID)
	merge(&s.state.Username, u.Username)
	merge(&s.state.Nickname, u.Nickname)
	merge(&s.state.Role, u.Role)
	merge(&s.state.Token, u.Token)
	merge(&s.state.AvatarURL, u.AvatarURL)
	merge(&s.state.StoreID, u.StoreID)
	merge(&s.state.StoreName, u.StoreName)
	if !u.ExpiresAt.IsZero() {
		s.state.ExpiresAt = u.ExpiresAt
	}
	s.mu.Unlock()
	return s.save(ctx)
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// UpdateProfile changes only the fields given.
func (s *Store) UpdateProfile(ctx context.Context, nickname, avatarURL *string) error {
	s.mu.Lock()
	if nickname != nil {
		s.state.Nickname = *nickname
	}
	if avatarURL != nil {
		s.state.AvatarURL = *avatarURL
	}
	s.mu.Unlock()
	return s.save(ctx)
}

// Clear resets the session and drops the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	return s.persist.Delete(ctx, persistKey)
}

func (s *Store) save(ctx context.Context) error {
	return s.persist.Save(ctx, persistKey, s.Snapshot())
}
