package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/persist"
)

func init() {
	logger.SetOutput(io.Discard)
}

type fakeAuth struct {
	token string
	err   error
}

func (f fakeAuth) Login(ctx context.Context, p api.LoginParams) (*api.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.LoginResult{Token: f.token}, nil
}

func signToken(t *testing.T, secret string, c Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func newPersist() *persist.Store {
	return persist.New(persist.NewMemoryBackend(), nil, "test")
}

func TestLogin_ReadsClaimsAndPersists(t *testing.T) {
	p := newPersist()
	s := NewStore(p, "")

	tok := signToken(t, "whatever", Claims{
		Role:      "merchant",
		StoreID:   "s1",
		StoreName: "Tea House",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	st, err := s.Login(context.Background(), fakeAuth{token: tok}, "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if st.Role != "merchant" || st.UID != "42" || st.Username != "alice" || st.StoreName != "Tea House" {
		t.Fatalf("unexpected state: %+v", st)
	}
	if !s.Authenticated() || s.Token() != tok {
		t.Fatalf("expected authenticated session")
	}

	restored := NewStore(p, "")
	if err := restored.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Role() != "merchant" || restored.Token() != tok {
		t.Fatalf("unexpected restored state: %+v", restored.Snapshot())
	}
}

func TestLogin_VerifiesSignatureWhenSecretSet(t *testing.T) {
	s := NewStore(newPersist(), "right")
	tok := signToken(t, "wrong", Claims{Role: "admin"})

	_, err := s.Login(context.Background(), fakeAuth{token: tok}, "bob", "pw")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if s.Authenticated() {
		t.Fatalf("failed login must not authenticate")
	}
}

func TestLogin_RequiresRole(t *testing.T) {
	s := NewStore(newPersist(), "")
	tok := signToken(t, "k", Claims{Username: "carol"})
	if _, err := s.Login(context.Background(), fakeAuth{token: tok}, "carol", "pw"); !errors.Is(err, ErrMissingRole) {
		t.Fatalf("expected ErrMissingRole, got %v", err)
	}
}

func TestAuthenticated_Expired(t *testing.T) {
	s := NewStore(newPersist(), "")
	if err := s.SetUser(context.Background(), State{Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("set user: %v", err)
	}
	if s.Authenticated() {
		t.Fatalf("expired token must not authenticate")
	}
}

func TestSetUserMergesAndClear(t *testing.T) {
	p := newPersist()
	s := NewStore(p, "")
	ctx := context.Background()

	_ = s.SetUser(ctx, State{Username: "dave", Role: "admin", Token: "t"})
	_ = s.SetUser(ctx, State{Nickname: "D"})
	nick := "Dave"
	_ = s.UpdateProfile(ctx, &nick, nil)

	st := s.Snapshot()
	if st.Username != "dave" || st.Role != "admin" || st.DisplayName() != "Dave" {
		t.Fatalf("unexpected merged state: %+v", st)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.Token() != "" || s.Role() != "" {
		t.Fatalf("expected empty state after clear")
	}
	var out State
	if ok, _ := p.Load(ctx, "user", &out); ok {
		t.Fatalf("expected persisted session to be deleted")
	}
}
