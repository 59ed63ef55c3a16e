package infrastructure

import (
	"bytes"
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"account-service/internal/config"
)

// SessionBackend persists encoded session values by id. RedisService is the
// production implementation.
type SessionBackend interface {
	SetSession(ctx context.Context, id string, data []byte, ttl time.Duration) error
	GetSession(ctx context.Context, id string) ([]byte, error)
	DeleteSession(ctx context.Context, id string) error
}

// RedisSessionStore is a sessions.Store that keeps only a signed session id
// in the cookie and the values in the backend.
type RedisSessionStore struct {
	backend SessionBackend
	codecs  []securecookie.Codec
	options *sessions.Options
}

func NewRedisSessionStore(backend SessionBackend, options *sessions.Options, keyPairs ...[]byte) *RedisSessionStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, codec := range codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(options.MaxAge)
		}
	}
	return &RedisSessionStore{backend: backend, codecs: codecs, options: options}
}

func (s *RedisSessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

func (s *RedisSessionStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, cookie.Value, &session.ID, s.codecs...); err != nil {
		return session, err
	}

	found, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	if !found {
		// Unknown ids are not adopted. Save issues a fresh one.
		session.ID = ""
	}
	session.IsNew = !found
	return session, nil
}

// Save writes the values and the cookie. A negative MaxAge deletes the record
// and expires the cookie.
func (s *RedisSessionStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.backend.DeleteSession(r.Context(), session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return err
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.backend.SetSession(r.Context(), session.ID, buf.Bytes(), ttl); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisSessionStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	data, err := s.backend.GetSession(ctx, session.ID)
	if err != nil || data == nil {
		return false, err
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&session.Values); err != nil {
		return false, err
	}
	return true, nil
}

func sessionOptions(cfg config.SessionConfig) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewSessionStore returns a redis-backed store when backend is non-nil and a
// filesystem store in cfg.Dir otherwise.
func NewSessionStore(cfg config.SessionConfig, backend SessionBackend) sessions.Store {
	opts := sessionOptions(cfg)
	if backend != nil {
		return NewRedisSessionStore(backend, opts, []byte(cfg.Secret))
	}

	store := sessions.NewFilesystemStore(cfg.Dir, []byte(cfg.Secret))
	store.Options = opts
	store.MaxAge(opts.MaxAge)
	return store
}
