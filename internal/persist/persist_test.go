package persist

import (
	"context"
	"errors"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type sample struct {
	Role   string   `json:"role"`
	Routes []string `json:"routes"`
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func newSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewSealer("test-secret")
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	return s
}

func TestStore_RoundTripOverDB(t *testing.T) {
	b, err := NewDBBackend(openTestDB(t))
	if err != nil {
		t.Fatalf("db backend: %v", err)
	}
	st := New(b, newSealer(t), "console")
	ctx := context.Background()

	var got sample
	ok, err := st.Load(ctx, "permission", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	if err := st.Save(ctx, "permission", sample{Role: "merchant", Routes: []string{"goods"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// overwrite goes through the upsert path
	if err := st.Save(ctx, "permission", sample{Role: "admin", Routes: []string{"audit"}}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	ok, err = st.Load(ctx, "permission", &got)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Role != "admin" || len(got.Routes) != 1 || got.Routes[0] != "audit" {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := st.Delete(ctx, "permission"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, _ = st.Load(ctx, "permission", &got)
	if ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestStore_ValuesAreSealed(t *testing.T) {
	mem := NewMemoryBackend()
	st := New(mem, newSealer(t), "")
	ctx := context.Background()

	if err := st.Save(ctx, "user", map[string]string{"token": "secret-token"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, ok, _ := mem.Get(ctx, "user")
	if !ok {
		t.Fatalf("expected raw value")
	}
	if string(raw) == `{"token":"secret-token"}` {
		t.Fatalf("value stored in clear text")
	}

	raw[len(raw)-1] ^= 0xff
	_ = mem.Put(ctx, "user", raw)

	var out map[string]string
	_, err := st.Load(ctx, "user", &out)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for tampered value, got %v", err)
	}
}

func TestSealer_DifferentSecretCannotOpen(t *testing.T) {
	a := newSealer(t)
	b, _ := NewSealer("other-secret")

	box, err := a.Seal([]byte("hello"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := b.Open(box); err == nil {
		t.Fatalf("expected open with wrong key to fail")
	}
	plain, err := a.Open(box)
	if err != nil || string(plain) != "hello" {
		t.Fatalf("open: %q %v", plain, err)
	}
}

func TestNewSealer_EmptySecret(t *testing.T) {
	if _, err := NewSealer(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
