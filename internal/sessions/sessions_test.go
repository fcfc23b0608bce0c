package sessions

import (
	"testing"
	"time"

	"github.com/mediabucket/mbx/internal/models"
	"github.com/mediabucket/mbx/internal/shared"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func liveAuth(bucketID int64) models.Auth {
	return models.Auth{
		BucketID:   bucketID,
		Token:      "token",
		ShareToken: "share",
		Base:       "https://host/api/buckets/1",
		Lifetime:   3600,
		CreatedAt:  time.Now(),
	}
}

func expiredAuth(bucketID int64) models.Auth {
	auth := liveAuth(bucketID)
	auth.CreatedAt = time.Now().Add(-2 * time.Hour)
	return auth
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	auth := liveAuth(1)

	if err := store.Save(auth); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Get(1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if loaded == nil || loaded.Token != "token" || loaded.Base != auth.Base {
		t.Errorf("loaded = %+v", loaded)
	}

	if missing, err := store.Get(99); err != nil || missing != nil {
		t.Errorf("Get(99) = %+v, %v", missing, err)
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(liveAuth(1)); err != nil {
		t.Fatal(err)
	}
	replacement := liveAuth(1)
	replacement.Token = "fresh"
	if err := store.Save(replacement); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Token != "fresh" {
		t.Errorf("token = %q, want fresh", loaded.Token)
	}

	sessions, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(sessions))
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(liveAuth(1)); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if loaded, _ := store.Get(1); loaded != nil {
		t.Error("session not deleted")
	}

	// Deleting again is not an error.
	if err := store.Delete(1); err != nil {
		t.Errorf("Delete() on absent session error = %v", err)
	}
}

func TestManagerPrivateSessionsStayInMemory(t *testing.T) {
	store := newTestStore(t)
	manager := NewManager(store)

	private := liveAuth(1)
	private.PrivateSession = true
	if err := manager.Save(private); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The persistent store never sees it.
	if persisted, _ := store.Get(1); persisted != nil {
		t.Error("private session reached the persistent store")
	}

	loaded, err := manager.Load(1)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil || !loaded.PrivateSession {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestManagerLoadFiltersExpired(t *testing.T) {
	store := newTestStore(t)
	manager := NewManager(store)

	if err := manager.Save(expiredAuth(1)); err != nil {
		t.Fatal(err)
	}

	loaded, err := manager.Load(1)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded != nil {
		t.Errorf("expired session returned: %+v", loaded)
	}

	// The expired row was pruned on the way out.
	if stored, _ := store.Get(1); stored != nil {
		t.Error("expired session not pruned from store")
	}
}

func TestManagerPrivateShadowsPersisted(t *testing.T) {
	store := newTestStore(t)
	manager := NewManager(store)

	persisted := liveAuth(1)
	persisted.Token = "persisted"
	if err := manager.Save(persisted); err != nil {
		t.Fatal(err)
	}

	private := liveAuth(1)
	private.Token = "private"
	private.PrivateSession = true
	if err := manager.Save(private); err != nil {
		t.Fatal(err)
	}

	loaded, err := manager.Load(1)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Token != "private" {
		t.Errorf("token = %q, want private", loaded.Token)
	}

	all, err := manager.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Token != "private" {
		t.Errorf("All() = %+v", all)
	}
}

func TestManagerRemove(t *testing.T) {
	store := newTestStore(t)
	manager := NewManager(store)

	if err := manager.Save(liveAuth(1)); err != nil {
		t.Fatal(err)
	}
	if err := manager.Remove(1); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if loaded, _ := manager.Load(1); loaded != nil {
		t.Error("session not removed")
	}
}

func TestManagerWithoutStore(t *testing.T) {
	manager := NewManager(nil)

	if err := manager.Save(liveAuth(2)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := manager.Load(2)
	if err != nil || loaded == nil {
		t.Fatalf("Load() = %+v, %v", loaded, err)
	}

	all, err := manager.All()
	if err != nil || len(all) != 1 {
		t.Fatalf("All() = %+v, %v", all, err)
	}
}
