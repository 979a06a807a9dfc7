package domain

type contextKey string

// UserContextKey carries the authenticated user through request context.
const UserContextKey contextKey = "user"

// User is the minimal identity attached by the auth middleware. Session
// issuance lives in an external identity service; only token claims are
// materialized here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
