package middleware

import (
	"context"
	"errors"
	"net/http"
	"tle_quiz/internal/common"
	"tle_quiz/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const PrincipalCtxKey contextKey = "principal"

// Authenticator attaches the caller to the request context when a valid
// token was presented. Requests without a token continue anonymously; a
// token that fails verification is rejected.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if errors.Is(err, jwtauth.ErrNoTokenFound) || (err == nil && token == nil) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			return
		}

		p, err := security.PrincipalFromClaims(jwt.MapClaims(claims))
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), PrincipalCtxKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly lets through admins and super admins.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipalFromContext(r.Context())
		if p == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Please login first")
			return
		}
		if !p.IsAdminRole() {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// QuizPermissionRequired guards the quiz write endpoints. It expects
// AdminOnly to have run.
func QuizPermissionRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetPrincipalFromContext(r.Context()).CanManageQuizzes() {
			common.RespondWithError(w, http.StatusForbidden, "Quiz permission required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipalFromContext returns the caller, or nil for anonymous requests.
func GetPrincipalFromContext(ctx context.Context) *security.Principal {
	p, _ := ctx.Value(PrincipalCtxKey).(*security.Principal)
	return p
}
