// Package device persists the local device's identity and preferences: the
// generated user id and token, display name, avatar, mute and theme flags,
// and the one-shot accept-delete token for room cleanup prompts.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Well-known keys.
const (
	KeyUserID       = "userId"
	KeyToken        = "token"
	KeyUserName     = "userName"
	KeyAvatarID     = "avatarId"
	KeyMute         = "mute"
	KeyDarkTheme    = "darkTheme"
	KeyAcceptDelete = "acceptDelete"
)

// ErrNotFound is returned when a key has never been set.
var ErrNotFound = errors.New("device: key not found")

// Store is the device-local key-value collaborator. Implementations must
// make Set durable before returning.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Identity is what the init payload needs from the device.
type Identity struct {
	UserID   string
	Token    string
	UserName string
	AvatarID string
}

// EnsureIdentity loads the persisted identity, generating and persisting a
// fresh user id and token on first run. Name and avatar stay empty until the
// user picks them.
func EnsureIdentity(ctx context.Context, store Store) (Identity, error) {
	id, err := getOrInit(ctx, store, KeyUserID)
	if err != nil {
		return Identity{}, err
	}
	token, err := getOrInit(ctx, store, KeyToken)
	if err != nil {
		return Identity{}, err
	}

	name, err := getOptional(ctx, store, KeyUserName)
	if err != nil {
		return Identity{}, err
	}
	avatar, err := getOptional(ctx, store, KeyAvatarID)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: id, Token: token, UserName: name, AvatarID: avatar}, nil
}

func getOrInit(ctx context.Context, store Store, key string) (string, error) {
	v, err := store.Get(ctx, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("load %s: %w", key, err)
	}

	v = uuid.New().String()
	if err := store.Set(ctx, key, v); err != nil {
		return "", fmt.Errorf("persist generated %s: %w", key, err)
	}
	log.Info().Str("key", key).Msg("generated device identity value")
	return v, nil
}

func getOptional(ctx context.Context, store Store, key string) (string, error) {
	v, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

// ConsumeAcceptDelete reads and clears the accept-delete token. The token
// rides along on the next init exactly once.
func ConsumeAcceptDelete(ctx context.Context, store Store) (string, error) {
	v, err := store.Get(ctx, KeyAcceptDelete)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load accept-delete token: %w", err)
	}
	if err := store.Delete(ctx, KeyAcceptDelete); err != nil {
		return "", fmt.Errorf("clear accept-delete token: %w", err)
	}
	return v, nil
}

// BoolFlag reads a preference flag; absent means false.
func BoolFlag(ctx context.Context, store Store, key string) (bool, error) {
	v, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	return v == "true" || v == "1", nil
}
