package jwkskit

import (
	"fmt"
	"os"
	"strings"
)

// SeedFromFile reads a JWKS document from disk and installs it for the
// issuer. Intended for air-gapped or pre-warmed deployments where the
// provider's key set is distributed out of band (e.g. mounted by an
// external secrets operator).
func SeedFromFile(c *Cache, issuer, path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("jwks: reading %s: %w", path, err)
	}
	if err := c.SeedJSON(issuer, doc); err != nil {
		return fmt.Errorf("jwks: parsing %s: %w", path, err)
	}
	return nil
}

// SeedFromEnv installs a JWKS document held in an environment variable.
// Returns (false, nil) when the variable is unset or empty, so callers can
// fall through to fetch-on-demand.
func SeedFromEnv(c *Cache, issuer, envVar string) (bool, error) {
	doc := strings.TrimSpace(os.Getenv(envVar))
	if doc == "" {
		return false, nil
	}
	if err := c.SeedJSON(issuer, []byte(doc)); err != nil {
		return false, fmt.Errorf("jwks: parsing %s: %w", envVar, err)
	}
	return true, nil
}
