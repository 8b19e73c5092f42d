package magiclink

import "time"

// Config holds magic link flow configuration.
type Config struct {
	// BaseURL is the origin verification links point at, e.g.
	// "https://app.example.com". Also the fallback redirect target.
	BaseURL string `env:"MAGIC_LINK_BASE_URL,required"`

	// ExpiresIn bounds how long an issued link stays redeemable.
	ExpiresIn time.Duration `env:"MAGIC_LINK_EXPIRES_IN" envDefault:"5m"`

	// DisableSignUp restricts the flow to existing accounts: issuing to an
	// unknown email is rejected, and redeeming never creates a user.
	DisableSignUp bool `env:"MAGIC_LINK_DISABLE_SIGNUP" envDefault:"false"`

	// RateLimitWindow and RateLimitMax define the shared fixed-window budget
	// for the issue and verify endpoints.
	RateLimitWindow time.Duration `env:"MAGIC_LINK_RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitMax    int           `env:"MAGIC_LINK_RATE_LIMIT_MAX" envDefault:"5"`
}

// DefaultConfig returns the configuration used when the host wires the flow
// without environment loading.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		ExpiresIn:       5 * time.Minute,
		RateLimitWindow: time.Minute,
		RateLimitMax:    5,
	}
}
