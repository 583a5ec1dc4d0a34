package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devmarvs/pmboard/auth"
)

func TestFileStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	sess, err := store.Load()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if _, ok := sess.Principal(); ok {
		t.Fatalf("expected empty session")
	}

	if err := sess.SetPrincipal(auth.Principal{Token: "tok", Role: auth.RoleAdmin, Name: "Ada", ID: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Write(sess); err != nil {
		t.Fatalf("write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.HasRole(auth.RoleAdmin) {
		t.Fatalf("expected admin principal after reload")
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}
