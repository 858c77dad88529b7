package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	validation "github.com/jellydator/validation"
	"golang.org/x/sync/errgroup"

	"github.com/clio-platform/clio/internal/errors"
	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
	"github.com/clio-platform/clio/internal/session/store"
	customValidation "github.com/clio-platform/clio/internal/validation"
)

// idBytes is the entropy of session ids and tokens (128 bits).
const idBytes = 16

// Config holds the session lifetimes and the instance binding.
type Config struct {
	// Duration is the sliding lifetime of a session.
	Duration time.Duration
	// TombstoneTTL is how long a regenerated session is reported as superseded.
	TombstoneTTL time.Duration
	// InstanceID must match the id stored in a session for it to verify.
	InstanceID string
}

// Option customizes a session use case.
type Option func(*sessionUseCase)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *sessionUseCase) {
		s.now = now
	}
}

// sessionUseCase implements SessionUseCase on a KVStore.
type sessionUseCase struct {
	kv      store.KVStore
	retrier store.Retrier
	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
}

// NewSessionUseCase creates the session manager.
func NewSessionUseCase(
	kv store.KVStore,
	retrier store.Retrier,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) SessionUseCase {
	s := &sessionUseCase{
		kv:      kv,
		retrier: retrier,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession writes the data, token and user-set entries as one retried unit.
// A partial write is harmless: verification fails closed on any missing key.
func (s *sessionUseCase) CreateSession(ctx context.Context, identity sessionDomain.Identity) (string, error) {
	if err := identity.Validate(); err != nil {
		return "", errors.Wrap(sessionDomain.ErrInvalidIdentity, err.Error())
	}

	sessionID, token, err := newSessionIDAndToken()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(sessionDomain.SessionData{
		Username:         identity.Username,
		Role:             identity.Role,
		CreatedAt:        s.now().UTC(),
		ServerInstanceID: s.cfg.InstanceID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode session data: %w", err)
	}

	err = s.retrier.Do(ctx, "session_create", func(ctx context.Context) error {
		if err := s.kv.SetWithExpiry(ctx, sessionDomain.DataKey(sessionID), string(payload), s.cfg.Duration); err != nil {
			return err
		}
		if err := s.kv.SetWithExpiry(ctx, sessionDomain.TokenKey(token), sessionID, s.cfg.Duration); err != nil {
			return err
		}
		return s.kv.AddToSet(ctx, sessionDomain.UserSessionsKey(identity.Username), sessionID, s.cfg.Duration)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("session created",
		slog.String("username", identity.Username),
		slog.String("session_id", sessionDomain.ShortID(sessionID)),
	)
	return token, nil
}

// lookup is the raw state read for one token.
type lookup struct {
	sessionID  string
	tokenFound bool
	superseded bool
	rawData    string
	dataFound  bool
}

func (s *sessionUseCase) resolve(ctx context.Context, operation, token string) (lookup, error) {
	var l lookup
	err := s.retrier.Do(ctx, operation, func(ctx context.Context) error {
		l = lookup{}

		id, ok, err := s.kv.Get(ctx, sessionDomain.TokenKey(token))
		if err != nil || !ok {
			return err
		}
		l.sessionID, l.tokenFound = id, true

		_, superseded, err := s.kv.Get(ctx, sessionDomain.TombstoneKey(id))
		if err != nil {
			return err
		}
		if superseded {
			l.superseded = true
			return nil
		}

		l.rawData, l.dataFound, err = s.kv.Get(ctx, sessionDomain.DataKey(id))
		return err
	})
	return l, err
}

// VerifySession checks token, tombstone, data and instance binding, then refreshes the
// TTL of the token, the data key and the user set. Nothing is refreshed for a rejected
// session.
func (s *sessionUseCase) VerifySession(ctx context.Context, token string) (*sessionDomain.SessionData, error) {
	if token == "" {
		return nil, sessionDomain.ErrInvalidSession
	}

	l, err := s.resolve(ctx, "session_verify", token)
	if err != nil {
		return nil, err
	}
	if !l.tokenFound {
		return nil, sessionDomain.ErrInvalidSession
	}
	if l.superseded {
		s.logger.Info("superseded session presented",
			slog.String("session_id", sessionDomain.ShortID(l.sessionID)),
		)
		return nil, sessionDomain.ErrSessionSuperseded
	}
	if !l.dataFound {
		return nil, sessionDomain.ErrInvalidSession
	}

	data, err := s.decode(l.sessionID, l.rawData)
	if err != nil {
		return nil, err
	}
	if data.ServerInstanceID != s.cfg.InstanceID {
		s.logger.Warn("session bound to another server instance",
			slog.String("session_id", sessionDomain.ShortID(l.sessionID)),
			slog.String("session_instance", data.ServerInstanceID),
		)
		return nil, sessionDomain.ErrInvalidSession
	}

	var refreshed, superseded bool
	err = s.retrier.Do(ctx, "session_refresh", func(ctx context.Context) error {
		var unitErr error
		refreshed, superseded, unitErr = s.refresh(ctx, token, l.sessionID, data.Username)
		return unitErr
	})
	if err != nil {
		return nil, err
	}
	if superseded {
		return nil, sessionDomain.ErrSessionSuperseded
	}
	if !refreshed {
		// Revoked or regenerated between the read and the refresh.
		return nil, sessionDomain.ErrInvalidSession
	}

	return data, nil
}

// refresh slides the token, the data key and the user set to the full session
// duration. The data key is only touched while the token still exists, and a
// tombstone written by a concurrent regeneration hands the data key back to the
// tombstone TTL. Set refresh precedes the tombstone read so a regeneration that
// misses here still removes the old id from the set afterwards.
func (s *sessionUseCase) refresh(ctx context.Context, token, sessionID, username string) (bool, bool, error) {
	tokenOK, err := s.kv.Expire(ctx, sessionDomain.TokenKey(token), s.cfg.Duration)
	if err != nil || !tokenOK {
		return false, false, err
	}
	dataOK, err := s.kv.Expire(ctx, sessionDomain.DataKey(sessionID), s.cfg.Duration)
	if err != nil || !dataOK {
		return false, false, err
	}
	if err := s.kv.AddToSet(ctx, sessionDomain.UserSessionsKey(username), sessionID, s.cfg.Duration); err != nil {
		return false, false, err
	}

	_, superseded, err := s.kv.Get(ctx, sessionDomain.TombstoneKey(sessionID))
	if err != nil {
		return false, false, err
	}
	if !superseded {
		return true, false, nil
	}

	if _, err := s.kv.Expire(ctx, sessionDomain.DataKey(sessionID), s.cfg.TombstoneTTL); err != nil {
		return false, false, err
	}
	if err := s.kv.RemoveFromSet(ctx, sessionDomain.UserSessionsKey(username), sessionID); err != nil {
		return false, false, err
	}
	return false, true, nil
}

func (s *sessionUseCase) decode(sessionID, raw string) (*sessionDomain.SessionData, error) {
	var data sessionDomain.SessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil || data.Username == "" {
		s.logger.Warn("corrupt session data",
			slog.String("session_id", sessionDomain.ShortID(sessionID)),
		)
		return nil, sessionDomain.ErrInvalidSession
	}
	return &data, nil
}

// RegenerateSession issues a new session and retires the old one as a single unit.
// The old data key is shortened to the tombstone TTL rather than deleted, so a request
// that already resolved the old token reads the tombstone instead of a missing key.
func (s *sessionUseCase) RegenerateSession(
	ctx context.Context,
	oldToken string,
	identity sessionDomain.Identity,
) (string, error) {
	if oldToken == "" {
		return "", sessionDomain.ErrInvalidSession
	}
	if err := identity.Validate(); err != nil {
		return "", errors.Wrap(sessionDomain.ErrInvalidIdentity, err.Error())
	}

	l, err := s.resolve(ctx, "session_regenerate_lookup", oldToken)
	if err != nil {
		return "", err
	}
	if !l.tokenFound {
		return "", sessionDomain.ErrInvalidSession
	}
	if l.superseded {
		return "", sessionDomain.ErrSessionSuperseded
	}

	oldID := l.sessionID
	oldOwner := identity.Username
	if l.dataFound {
		if old, err := s.decode(oldID, l.rawData); err == nil {
			oldOwner = old.Username
		}
	}

	newID, newToken, err := newSessionIDAndToken()
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	payload, err := json.Marshal(sessionDomain.SessionData{
		Username:         identity.Username,
		Role:             identity.Role,
		CreatedAt:        now,
		ServerInstanceID: s.cfg.InstanceID,
		RegeneratedAt:    &now,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode session data: %w", err)
	}

	err = s.retrier.Do(ctx, "session_regenerate", func(ctx context.Context) error {
		if err := s.kv.SetWithExpiry(ctx, sessionDomain.DataKey(newID), string(payload), s.cfg.Duration); err != nil {
			return err
		}
		if err := s.kv.SetWithExpiry(ctx, sessionDomain.TokenKey(newToken), newID, s.cfg.Duration); err != nil {
			return err
		}
		if err := s.kv.AddToSet(ctx, sessionDomain.UserSessionsKey(identity.Username), newID, s.cfg.Duration); err != nil {
			return err
		}
		if err := s.kv.SetWithExpiry(ctx, sessionDomain.TombstoneKey(oldID), newID, s.cfg.TombstoneTTL); err != nil {
			return err
		}
		if _, err := s.kv.Delete(ctx, sessionDomain.TokenKey(oldToken)); err != nil {
			return err
		}
		if _, err := s.kv.Expire(ctx, sessionDomain.DataKey(oldID), s.cfg.TombstoneTTL); err != nil {
			return err
		}
		return s.kv.RemoveFromSet(ctx, sessionDomain.UserSessionsKey(oldOwner), oldID)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("session regenerated",
		slog.String("username", identity.Username),
		slog.String("old_session_id", sessionDomain.ShortID(oldID)),
		slog.String("session_id", sessionDomain.ShortID(newID)),
	)
	return newToken, nil
}

// RevokeSession removes the session from its user set (best-effort) and then
// deletes the token and data keys together.
func (s *sessionUseCase) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	var sessionID, rawData string
	var found, dataFound bool
	err := s.retrier.Do(ctx, "session_revoke_lookup", func(ctx context.Context) error {
		var err error
		sessionID, found, err = s.kv.Get(ctx, sessionDomain.TokenKey(token))
		if err != nil || !found {
			return err
		}
		rawData, dataFound, err = s.kv.Get(ctx, sessionDomain.DataKey(sessionID))
		return err
	})
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if dataFound {
		if data, err := s.decode(sessionID, rawData); err == nil {
			setKey := sessionDomain.UserSessionsKey(data.Username)
			err := s.retrier.Do(ctx, "session_revoke_set", func(ctx context.Context) error {
				return s.kv.RemoveFromSet(ctx, setKey, sessionID)
			})
			if err != nil {
				s.logger.Warn("failed to remove session from user set",
					slog.String("session_id", sessionDomain.ShortID(sessionID)),
					slog.Any("error", err),
				)
			}
		}
	}

	err = s.retrier.Do(ctx, "session_revoke", func(ctx context.Context) error {
		_, err := s.kv.Delete(ctx, sessionDomain.TokenKey(token), sessionDomain.DataKey(sessionID))
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("session revoked", slog.String("session_id", sessionDomain.ShortID(sessionID)))
	return nil
}

func validateUsername(username string) error {
	err := validation.Validate(username, validation.Required, customValidation.Username)
	if err != nil {
		return errors.Wrap(sessionDomain.ErrInvalidIdentity, "username: "+err.Error())
	}
	return nil
}

func (s *sessionUseCase) members(ctx context.Context, operation, username string) ([]string, error) {
	var ids []string
	err := s.retrier.Do(ctx, operation, func(ctx context.Context) error {
		var err error
		ids, err = s.kv.SetMembers(ctx, sessionDomain.UserSessionsKey(username))
		return err
	})
	return ids, err
}

// RevokeUserSessions deletes the data of every session in the user set and the set
// itself. Token keys are left behind and fail verification because their data is gone.
func (s *sessionUseCase) RevokeUserSessions(ctx context.Context, username string) (int, error) {
	if err := validateUsername(username); err != nil {
		return 0, err
	}

	ids, err := s.members(ctx, "session_revoke_user_lookup", username)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionDomain.DataKey(id))
	}
	keys = append(keys, sessionDomain.UserSessionsKey(username))

	err = s.retrier.Do(ctx, "session_revoke_user", func(ctx context.Context) error {
		_, err := s.kv.Delete(ctx, keys...)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("user sessions revoked",
		slog.String("username", username),
		slog.Int("count", len(ids)),
	)
	return len(ids), nil
}

// ListUserSessions returns the user's live sessions, oldest first. Set members whose
// data has expired are pruned from the set.
func (s *sessionUseCase) ListUserSessions(ctx context.Context, username string) ([]sessionDomain.SessionInfo, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	ids, err := s.members(ctx, "session_list", username)
	if err != nil {
		return nil, err
	}

	sessions := make([]sessionDomain.SessionInfo, 0, len(ids))
	var stale []string
	for _, id := range ids {
		var raw string
		var found bool
		err := s.retrier.Do(ctx, "session_list", func(ctx context.Context) error {
			var err error
			raw, found, err = s.kv.Get(ctx, sessionDomain.DataKey(id))
			return err
		})
		if err != nil {
			return nil, err
		}
		if !found {
			stale = append(stale, id)
			continue
		}
		data, err := s.decode(id, raw)
		if err != nil {
			continue
		}
		sessions = append(sessions, sessionDomain.SessionInfo{ID: id, Data: *data})
	}

	for _, id := range stale {
		if err := s.kv.RemoveFromSet(ctx, sessionDomain.UserSessionsKey(username), id); err != nil {
			s.logger.Warn("failed to prune stale session",
				slog.String("session_id", sessionDomain.ShortID(id)),
				slog.Any("error", err),
			)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Data.CreatedAt.Before(sessions[j].Data.CreatedAt)
	})
	return sessions, nil
}

// RevokeAllSessions scans every session key family concurrently and deletes page by page.
func (s *sessionUseCase) RevokeAllSessions(ctx context.Context) (int64, error) {
	var deleted atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for _, pattern := range sessionDomain.KeyFamilies {
		g.Go(func() error {
			return s.retrier.Do(gctx, "session_revoke_all", func(ctx context.Context) error {
				return s.kv.ScanKeys(ctx, pattern, func(keys []string) error {
					n, err := s.kv.Delete(ctx, keys...)
					deleted.Add(n)
					return err
				})
			})
		})
	}

	if err := g.Wait(); err != nil {
		return deleted.Load(), err
	}

	s.logger.Info("all sessions revoked", slog.Int64("deleted_keys", deleted.Load()))
	return deleted.Load(), nil
}

func newSessionIDAndToken() (string, string, error) {
	id, err := randomHex()
	if err != nil {
		return "", "", err
	}
	token, err := randomHex()
	if err != nil {
		return "", "", err
	}
	return id, token, nil
}

func randomHex() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random identifier: %w", err)
	}
	return hex.EncodeToString(b), nil
}
