package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/cybershaala/academy-backend/api/responses"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
)

// EnrollmentSecretHeader carries the operator shared secret.
const EnrollmentSecretHeader = "X-Enrollment-Secret"

// AdminSecret gates operator endpoints behind the shared enrollment secret.
// The reprocess controller additionally accepts the secret in the body, so
// this middleware lets requests without the header through to the handler
// only when allowBody is set.
func AdminSecret(secret string, allowBody bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollment secret not configured"))
				return
			}

			provided := r.Header.Get(EnrollmentSecretHeader)
			if provided == "" && allowBody {
				next.ServeHTTP(w, r)
				return
			}
			if !SecretMatches(secret, provided) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid enrollment secret"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecretMatches compares secrets in constant time.
func SecretMatches(expected, provided string) bool {
	if expected == "" || provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
