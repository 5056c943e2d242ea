// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging); AppConfig is where
// everything specific to the exchange service lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Auth configuration. The token key verifies bearer JWTs issued by
	// the identity provider; the session key signs the cookie fallback.
	TokenKey    string
	SessionKey  string
	SessionName string // Cookie name for sessions (default: skillswap-session)

	// CORS configuration for browser clients on other origins.
	CORSOrigins []string
}
