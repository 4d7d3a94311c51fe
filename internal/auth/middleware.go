package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/video-share/internal/apperror"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "identity", id), ANY package that knows the string
// can read or shadow your value. Using a package-private type prevents
// collisions: only THIS package can create a key of type contextKey.
type contextKey string

const identityKey contextKey = "identity"

// unauthorizedBody is the single 401 body the guard ever sends. Missing
// header, wrong scheme, bad signature and expired token are indistinguishable
// from the outside.
const unauthorizedBody = `{"error":"unauthorized","message":"` + apperror.MsgUnauthorized + `"}`

// ExtractBearer pulls the token out of an Authorization header value.
// The scheme is matched case-insensitively; anything else yields ok=false.
//
//	"Bearer abc"  → ("abc", true)
//	"bearer abc"  → ("abc", true)
//	"Basic abc"   → ("", false)
//	"Bearer"      → ("", false)
func ExtractBearer(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticate verifies the bearer token on r and returns its Identity.
// Every failure is apperror.Unauthorized(); the cause is not exposed.
func Authenticate(r *http.Request, tokens *TokenService) (*Identity, error) {
	return AuthenticateToken(r.Header.Get("Authorization"), "", tokens)
}

// AuthenticateToken is Authenticate for transports that cannot always set
// headers (EventSource). header wins when present; fallback is a raw token.
func AuthenticateToken(header, fallback string, tokens *TokenService) (*Identity, error) {
	token, ok := ExtractBearer(header)
	if !ok {
		if header != "" || fallback == "" {
			return nil, apperror.Unauthorized()
		}
		token = fallback
	}

	id, err := tokens.Verify(token)
	if err != nil {
		return nil, apperror.Unauthorized()
	}
	return id, nil
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <jwt>", verifies it, and stores the
// Identity in the request context. On any failure it returns 401 with a
// uniform body and stops the request chain.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler. The new handler "wraps" the original:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	        // ... do stuff after the handler ...
//	    })
//	}
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := Authenticate(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(unauthorizedBody))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated caller.
//
// Returns (nil, false) if no guard ran or it rejected the request.
//
// Usage in handlers:
//
//	id, ok := auth.IdentityFromContext(r.Context())
//	if !ok {
//	    // not authenticated
//	}
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil && id.UserID != ""
}
