package contextkeys

type contextKey string

// DBContextKey is the key under which the request-scoped *gorm.DB is stored.
const DBContextKey = contextKey("db")

// UserIDKey and RoleKey are the gin context keys set by the auth middleware.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)
