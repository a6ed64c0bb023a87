package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/database"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/pkg/errors"
)

// Issuer is the issuer of the session tokens.
const Issuer = "corkboard"

type (
	// A Manager manages sessions.
	Manager interface {
		// Token creates a new session token for the given user.
		Token(u *model.User) (string, error)
		// UserFromToken returns the user of the given token.
		UserFromToken(token string) (*model.User, error)
	}

	// Claims are the claims of a session token.
	Claims struct {
		jwt.RegisteredClaims
		UserID string `json:"user_id"`
	}

	manager struct {
		db database.Client
		// JWT params
		signingKey []byte
		ttl        time.Duration
	}
)

// NewManager returns a new manager.
// A zero ttl produces tokens that never expire.
func NewManager(db database.Client, signingKey []byte, ttl time.Duration) Manager {
	return &manager{
		db:         db,
		signingKey: signingKey,
		ttl:        ttl,
	}
}

func (m *manager) Token(u *model.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       SecureToken(24),
			Issuer:   Issuer,
			Subject:  u.Name,
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: u.ID,
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	return token, errors.Wrap(err, "could not generate token")
}

func (m *manager) UserFromToken(token string) (*model.User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil || claims.Issuer != Issuer || claims.UserID == "" {
		return nil, invalid("Invalid login credentials.")
	}

	user, err := m.db.FindUser(claims.UserID)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, invalid("No such user for given token.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}

	return user, nil
}

func invalid(message string) error {
	return cberror.NewWithTagCode(http.StatusUnauthorized, cberror.TagUnauthorized, message)
}
