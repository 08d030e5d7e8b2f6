package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT(key []byte) {
	TokenAuth = jwtauth.New("HS256", key, nil)
}

// GenerateToken mints a token for p. The account service owns login; this is
// used by tooling and tests.
func GenerateToken(p Principal, ttl time.Duration) (string, error) {
	if TokenAuth == nil {
		return "", errors.New("jwt auth is not initialised")
	}
	claims := jwt.MapClaims{
		"user_id":         p.UserID,
		"username":        p.Username,
		"admin_type":      p.AdminType,
		"quiz_permission": p.QuizPermission,
		"exp":             time.Now().Add(ttl).Unix(),
		"iat":             time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// PrincipalFromClaims builds the caller identity carried by a verified token.
func PrincipalFromClaims(claims jwt.MapClaims) (*Principal, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return nil, errors.New("user_id claim is missing or not a string")
	}
	p := &Principal{UserID: id, AdminType: AdminTypeRegular, QuizPermission: QuizPermissionNone}
	if v, ok := claims["username"].(string); ok {
		p.Username = v
	}
	if v, ok := claims["admin_type"].(string); ok && v != "" {
		p.AdminType = v
	}
	if v, ok := claims["quiz_permission"].(string); ok && v != "" {
		p.QuizPermission = v
	}
	return p, nil
}
