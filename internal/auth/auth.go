package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// Service hashes passwords and issues HS256 session tokens. Tokens carry
// the player id and display name so game handlers never need a database
// round trip to identify the actor.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Identity is the authenticated principal extracted from a token.
type Identity struct {
	UserID string
	Name   string
	Guest  bool
}

func (s *Service) GenerateToken(id Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": id.UserID,
		"name":    id.Name,
		"guest":   id.Guest,
		"exp":     time.Now().Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	guest, _ := claims["guest"].(bool)
	return Identity{UserID: userID, Name: name, Guest: guest}, nil
}

// NewGuestID mints an identity for players who skip registration.
func NewGuestID() string {
	return "guest-" + uuid.New().String()
}
