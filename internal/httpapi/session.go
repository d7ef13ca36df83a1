package httpapi

import (
	"crypto/rand"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "fpndb_session"
const sessionExpiry = 24 * time.Hour

// sessionManager maps session tokens to verified emails. Tokens are
// HS256 JWTs carried in a cookie; the signing key comes from
// configuration or is generated per process.
type sessionManager struct {
	key []byte
}

func newSessionManager(secret string) *sessionManager {
	if secret != "" {
		return &sessionManager{key: []byte(secret)}
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate session key: " + err.Error())
	}
	return &sessionManager{key: b}
}

func (m *sessionManager) issue(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(sessionExpiry).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

func (m *sessionManager) verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.key, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrSignatureInvalid
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

func (m *sessionManager) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionExpiry / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *sessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionEmail returns the verified email bound to the request's
// session cookie, or "" when no valid session is present.
func (s *Server) sessionEmail(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	email, err := s.sessions.verify(c.Value)
	if err != nil {
		return ""
	}
	return email
}
