package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const profileIDClaim = "profile_id"

// Parser validates HS256 access tokens carrying a profile id claim.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(token string) (int64, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected claims type")
	}

	switch raw := claims[profileIDClaim].(type) {
	case float64:
		return int64(raw), nil
	default:
		return 0, fmt.Errorf("missing %s claim", profileIDClaim)
	}
}

// Sign issues a token for the given profile id.
func (p *Parser) Sign(profileID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		profileIDClaim: profileID,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	})
	return token.SignedString(p.secret)
}
