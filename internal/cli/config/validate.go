package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

var outputModes = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(ProviderTypes, c.Provider.Type) {
		return fmt.Errorf("unknown provider type %q (available: %s)",
			c.Provider.Type, strings.Join(ProviderTypes, ", "))
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.OutputFormat != "" && !slices.Contains(outputModes, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (available: %s)",
			c.OutputFormat, strings.Join(outputModes, ", "))
	}
	return nil
}

// ValidatePolicy checks that the policy file exists.
func (c *Config) ValidatePolicy() error {
	if _, err := os.Stat(c.PolicyPath); os.IsNotExist(err) {
		return fmt.Errorf("policy file does not exist: %s\nHint: run 'archgate init' or use --policy to specify a different path", c.PolicyPath)
	}
	return nil
}
