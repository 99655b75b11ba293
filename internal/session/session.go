// Package session supplies the bearer token used for backend requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rshade/stockdesk/internal/logging"
	"github.com/rshade/stockdesk/internal/storage"
)

// KeyToken is the storage key of the persisted session.
const KeyToken = "session-token"

// ErrEmptyToken is returned when logging in without a token.
var ErrEmptyToken = errors.New("token cannot be empty")

// Source supplies a token. ok is false when no credential is available.
type Source interface {
	Token(ctx context.Context) (token string, ok bool)
}

// Info is the persisted session record.
type Info struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session persists a login in a storage.Store.
type Session struct {
	store storage.Store
}

// New returns a Session backed by store.
func New(store storage.Store) *Session {
	return &Session{store: store}
}

// Login stores token under a new session id.
func (s *Session) Login(ctx context.Context, token string) (Info, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Info{}, ErrEmptyToken
	}

	info := Info{Token: token, SessionID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	data, err := json.Marshal(info)
	if err != nil {
		return Info{}, fmt.Errorf("encoding session: %w", err)
	}
	if err = s.store.Set(ctx, KeyToken, string(data)); err != nil {
		return Info{}, fmt.Errorf("saving session: %w", err)
	}

	logging.FromContext(ctx).Info().Ctx(ctx).
		Str("component", "session").
		Str("operation", "login").
		Str("session_id", info.SessionID).
		Msg("logged in")
	return info, nil
}

// Logout forgets the stored session.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// Info returns the stored session record.
func (s *Session) Info(ctx context.Context) (Info, bool, error) {
	raw, ok, err := s.store.Get(ctx, KeyToken)
	if err != nil || !ok {
		return Info{}, false, err
	}
	var info Info
	if unmarshalErr := json.Unmarshal([]byte(raw), &info); unmarshalErr != nil {
		return Info{}, false, fmt.Errorf("decoding session: %w", unmarshalErr)
	}
	return info, info.Token != "", nil
}

// Token implements Source. Unreadable session data counts as logged out.
func (s *Session) Token(ctx context.Context) (string, bool) {
	info, ok, err := s.Info(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn().Ctx(ctx).
			Str("component", "session").
			Str("operation", "token").
			Err(err).
			Msg("session unreadable, treating as logged out")
		return "", false
	}
	return info.Token, ok
}

// Static is a fixed token. The empty Static has no credential.
type Static string

func (s Static) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

// Env reads the token from the named environment variable on every call.
type Env string

func (e Env) Token(context.Context) (string, bool) {
	v := strings.TrimSpace(os.Getenv(string(e)))
	return v, v != ""
}

// Chain returns the token of the first source that has one.
type Chain []Source

func (c Chain) Token(ctx context.Context) (string, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if tok, ok := src.Token(ctx); ok {
			return tok, true
		}
	}
	return "", false
}
