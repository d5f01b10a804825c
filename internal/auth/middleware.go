package auth

import (
	"net/http"
	"strings"

	"alert-reporting/internal/observability/metrics"
)

// Middleware extracts the caller's bearer token and rejects requests whose
// Authorization header is missing or malformed, before any upstream call is
// made. When Secret is set the token must additionally parse as a valid
// HS256 JWT; when unset the token is forwarded as-is and the upstream
// monitoring platform remains the authority.
type Middleware struct {
	Secret []byte
	Policy Policy
}

// Policy lists paths that skip auth entirely.
type Policy struct {
	ExemptPaths map[string]struct{}
}

// NewPolicy builds an exemption policy.
func NewPolicy(exemptPaths []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set}
}

// IsExempt returns true when a request should skip auth.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	_, ok := p.ExemptPaths[r.URL.Path]
	return ok
}

// NewMiddleware constructs the auth middleware. A nil or empty secret
// disables local JWT verification.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{Secret: secret, Policy: policy}
}

// Wrap applies bearer extraction to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := ExtractBearer(r)
		if !ok {
			metrics.IncAuthFailure()
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		subject := ""
		if len(m.Secret) > 0 {
			claims, err := ParseToken(token, m.Secret)
			if err != nil {
				metrics.IncAuthFailure()
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			subject = claims.Subject
		}

		next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token, subject)))
	})
}

// ExtractBearer pulls the token out of the Authorization header. The header
// must be present and start with "Bearer " followed by a non-empty token.
func ExtractBearer(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
