package contextkeys

// Custom type so keys never collide with other packages.
type contextKey string

// DBContextKey holds the request-scoped *gorm.DB.
const DBContextKey = contextKey("db")

// Gin context keys set by the auth middleware.
const (
	UserIDKey  = "userID"
	IsAdminKey = "isAdmin"
	RolesKey   = "roles"
)
