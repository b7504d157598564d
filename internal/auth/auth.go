package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/meetplan/internal/internaltypes"
)

const sessionTTL = 14 * 24 * time.Hour

// Store checks the single operator account and keeps its session in a signed,
// encrypted cookie.
type Store struct {
	sc *securecookie.SecureCookie

	username     string
	passwordHash []byte
}

type ctxKey string

const usernameKey ctxKey = "username"

func NewStore(username, passwordBcrypt string, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	// keep cookie small and secure
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &Store{sc: sc, username: username, passwordHash: []byte(passwordBcrypt)}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

func (s *Store) Authenticate(username, password string) error {
	userOK := secureEq(username, s.username)
	// always pay the bcrypt cost so a wrong username is not cheaper
	pwOK := CheckPassword(string(s.passwordHash), password)
	if !userOK || !pwOK {
		return internaltypes.ErrUnauthorized
	}
	return nil
}

type Session struct {
	Username string
}

const cookieName = "meetplan_session"

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, username string) error {
	val := map[string]string{"user": username, "v": "1"}
	encoded, err := s.sc.Encode(cookieName, val)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil, // ok for local http; secure in https
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]string{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	user := val["user"]
	if user == "" || !secureEq(user, s.username) {
		return Session{}, false
	}
	return Session{Username: user}, true
}

// RequireAuth lets requests with a valid session through. API clients get a
// 401, browsers are sent to the login page.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				http.Error(w, internaltypes.ErrUnauthorized.Error(), http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, sess.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok
}

func secureEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
