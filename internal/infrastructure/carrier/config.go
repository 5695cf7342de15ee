package carrier

import (
	"time"

	"github.com/vendora/backend/internal/domain/shared"
)

// DelhiveryConfig holds Delhivery panel credentials and tuning
type DelhiveryConfig struct {
	BaseURL      string
	APIToken     string
	Timeout      time.Duration
	MaxRetries   int           // Retries on network errors and 5xx responses
	RetryBackoff time.Duration // Base backoff, doubled per attempt
}

// Validate checks the configuration
func (c *DelhiveryConfig) Validate() error {
	if c.BaseURL == "" {
		return shared.NewDomainError("INVALID_CONFIG", "Carrier base URL is required")
	}
	if c.APIToken == "" {
		return shared.NewDomainError("INVALID_CONFIG", "Carrier API token is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	return nil
}
