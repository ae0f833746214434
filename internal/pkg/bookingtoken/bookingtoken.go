package bookingtoken

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// InvalidTokenError covers expired, malformed and wrongly signed tokens.
type InvalidTokenError struct{}

func (e *InvalidTokenError) Error() string {
	return "invalid booking token"
}

// Manager issues and verifies the opaque tokens handed to bookers. The token
// carries the event id, so the public booking surface can correlate a booking
// without any session state.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

func (m *Manager) CreateToken(eventID int64) (string, error) {
	claims := &jwt.RegisteredClaims{
		ID:      uuid.NewString(),
		Subject: strconv.FormatInt(eventID, 10),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("bookingtoken.CreateToken: %w", err)
	}
	return token, nil
}

func (m *Manager) ParseToken(token string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, &InvalidTokenError{}
	}

	eventID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, &InvalidTokenError{}
	}
	return eventID, nil
}
