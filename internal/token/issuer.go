// Package token issues and decodes the signed credentials understood by the
// real-time infrastructure.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ParticipantTokenTTL is the fixed validity window for participant tokens.
// There is no revocation; staleness is handled by client-side refresh.
const ParticipantTokenTTL = 15 * time.Minute

// adminTokenTTL bounds the short-lived tokens used to authorize server API
// calls such as agent dispatch.
const adminTokenTTL = 10 * time.Minute

var (
	ErrMissingKey    = errors.New("token: api key is required")
	ErrMissingSecret = errors.New("token: api secret is required")
)

// Grant is the capability set embedded in a credential, scoped to one room.
type Grant struct {
	Room           string `json:"room,omitempty"`
	RoomJoin       bool   `json:"roomJoin,omitempty"`
	RoomAdmin      bool   `json:"roomAdmin,omitempty"`
	CanPublish     bool   `json:"canPublish,omitempty"`
	CanPublishData bool   `json:"canPublishData,omitempty"`
	CanSubscribe   bool   `json:"canSubscribe,omitempty"`
}

// Claims is the JWT payload carried by every credential this service signs.
type Claims struct {
	Name  string `json:"name,omitempty"`
	Video Grant  `json:"video"`
	jwt.RegisteredClaims
}

// Issuer signs capability-scoped credentials with an API key pair.
type Issuer struct {
	key    string
	secret []byte
	now    func() time.Time
}

// NewIssuer fails fast when either half of the key pair is absent, so a
// partially configured process can never sign anything.
func NewIssuer(key, secret string) (*Issuer, error) {
	if key == "" {
		return nil, ErrMissingKey
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Issuer{key: key, secret: []byte(secret), now: time.Now}, nil
}

// WithClock overrides the time source. Tests only.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cpy := *i
	cpy.now = now
	return &cpy
}

// ParticipantToken signs a join credential for one participant in one room.
// All four participant capabilities are always granted; there is no tiered
// permission model.
func (i *Issuer) ParticipantToken(identity, name, room string) (string, error) {
	grant := Grant{
		Room:           room,
		RoomJoin:       true,
		CanPublish:     true,
		CanPublishData: true,
		CanSubscribe:   true,
	}
	return i.sign(identity, name, grant, ParticipantTokenTTL)
}

// AdminToken signs a short-lived credential authorizing server API calls
// (agent dispatch) against the given room.
func (i *Issuer) AdminToken(room string) (string, error) {
	grant := Grant{Room: room, RoomAdmin: true}
	return i.sign(i.key, "", grant, adminTokenTTL)
}

func (i *Issuer) sign(identity, name string, grant Grant, ttl time.Duration) (string, error) {
	now := i.now()
	claims := &Claims{
		Name:  name,
		Video: grant,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.key,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify parses a credential signed by this issuer and returns its claims.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token: parse: %w", err)
	}
	return &claims, nil
}

// RoomClaim extracts the room a credential is scoped to, without verifying
// the signature. For holders inspecting their own token.
func RoomClaim(tokenString string) (string, error) {
	claims, err := decodeUnverified(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Video.Room, nil
}

// Expiry extracts a credential's expiry time without verifying the
// signature. Returns an error when the claim is absent.
func Expiry(tokenString string) (time.Time, error) {
	claims, err := decodeUnverified(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token: no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}

func decodeUnverified(tokenString string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return nil, fmt.Errorf("token: decode: %w", err)
	}
	return &claims, nil
}
