package access

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultResetTokenTTL   = time.Hour
	DefaultSessionDuration = 12 * time.Hour
)

type Config struct {
	// SecretKey signs password reset tokens. Tokens remain valid across
	// restarts only while the key stays the same.
	SecretKey string
	// BaseURL is prepended to the path of links sent by email.
	BaseURL         string
	ResetTokenTTL   time.Duration
	SessionDuration time.Duration
	BcryptCost      int

	// Now defaults to time.Now.
	Now func() time.Time
}

func (c *Config) setDefaults() error {
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required")
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.ResetTokenTTL == 0 {
		c.ResetTokenTTL = DefaultResetTokenTTL
	}
	if c.SessionDuration == 0 {
		c.SessionDuration = DefaultSessionDuration
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}
