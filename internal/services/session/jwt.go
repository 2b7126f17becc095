package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type tokenClaims struct {
	Username string `json:"username"`
	IP       string `json:"ip"`
	Channel  string `json:"channel"`
	jwt.RegisteredClaims
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *JWTManager) Sign(userID int64, username, ip, channel string) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("jwt secret is empty")
	}
	if userID <= 0 || strings.TrimSpace(username) == "" {
		return "", time.Time{}, fmt.Errorf("invalid token payload")
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)
	claims := tokenClaims{
		Username: username,
		IP:       ip,
		Channel:  channel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Decode verifies signature and expiry. Any failure, malformed input included,
// yields ErrInvalidToken; callers treat that as "no valid session".
func (m *JWTManager) Decode(raw string) (Claims, error) {
	return m.decode(raw, false)
}

// DecodeAllowExpired verifies the signature but not the expiry. The eviction
// path uses it: a stored session whose token merely expired is still a known
// session and must remain eligible for revocation, while a token that fails
// signature checks marks the session as corrupt.
func (m *JWTManager) DecodeAllowExpired(raw string) (Claims, error) {
	return m.decode(raw, true)
}

func (m *JWTManager) decode(raw string, allowExpired bool) (Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return Claims{}, ErrInvalidToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	}
	if allowExpired {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, options...)
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	userID, parseErr := strconv.ParseInt(claims.Subject, 10, 64)
	if parseErr != nil || userID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID:    userID,
		Username:  claims.Username,
		IP:        claims.IP,
		Channel:   claims.Channel,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
