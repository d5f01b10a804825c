package auth

import "context"

type contextKey string

const (
	contextKeyToken   contextKey = "auth.token"
	contextKeySubject contextKey = "auth.subject"
)

// WithToken stores the caller's bearer token and subject in context.
func WithToken(ctx context.Context, token, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeyToken, token)
	if subject != "" {
		ctx = context.WithValue(ctx, contextKeySubject, subject)
	}
	return ctx
}

// TokenFromContext extracts the bearer token from context.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if token, ok := ctx.Value(contextKeyToken).(string); ok {
		return token
	}
	return ""
}

// SubjectFromContext extracts the authenticated subject from context.
// Empty unless local JWT verification is enabled.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subject, ok := ctx.Value(contextKeySubject).(string); ok {
		return subject
	}
	return ""
}
