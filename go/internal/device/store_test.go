package device

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureIdentity_GeneratesAndPersistsOnFirstRun(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := EnsureIdentity(ctx, store)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.UserID == "" || first.Token == "" {
		t.Fatalf("first run: want generated id and token, got %+v", first)
	}
	if first.UserName != "" || first.AvatarID != "" {
		t.Fatalf("first run: name and avatar stay empty until chosen, got %+v", first)
	}

	// A second run returns the same identity, not a fresh one.
	second, err := EnsureIdentity(ctx, store)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.UserID != first.UserID || second.Token != first.Token {
		t.Fatalf("identity not stable across runs: %+v vs %+v", first, second)
	}
}

func TestEnsureIdentity_LoadsChosenNameAndAvatar(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Set(ctx, KeyUserName, "Ada"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, KeyAvatarID, "fox-3"); err != nil {
		t.Fatal(err)
	}

	id, err := EnsureIdentity(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if id.UserName != "Ada" || id.AvatarID != "fox-3" {
		t.Fatalf("want persisted name/avatar, got %+v", id)
	}
}

func TestConsumeAcceptDelete_ReadsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Set(ctx, KeyAcceptDelete, "room-7"); err != nil {
		t.Fatal(err)
	}

	got, err := ConsumeAcceptDelete(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if got != "room-7" {
		t.Fatalf("want room-7, got %q", got)
	}

	again, err := ConsumeAcceptDelete(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if again != "" {
		t.Fatalf("token must clear after one read, got %q", again)
	}
}

func TestBoolFlag_AbsentMeansFalse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	muted, err := BoolFlag(ctx, store, KeyMute)
	if err != nil {
		t.Fatal(err)
	}
	if muted {
		t.Fatal("absent flag must read false")
	}

	if err := store.Set(ctx, KeyMute, "true"); err != nil {
		t.Fatal(err)
	}
	muted, err = BoolFlag(ctx, store, KeyMute)
	if err != nil {
		t.Fatal(err)
	}
	if !muted {
		t.Fatal("set flag must read true")
	}
}

func TestMemoryStore_GetMissingKey(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
