package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the struct tags of the whole configuration tree and the
// cross-field rules that tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.AI.Health.MaxBackoff > 0 && c.AI.Health.MaxBackoff < c.AI.Health.InitialBackoff {
		return fmt.Errorf("ai.health.max_backoff (%s) must not be lower than ai.health.initial_backoff (%s)",
			c.AI.Health.MaxBackoff, c.AI.Health.InitialBackoff)
	}
	seen := make(map[string]bool, len(c.AI.Providers))
	for _, p := range c.AI.Providers {
		if seen[p.Name] {
			return fmt.Errorf("duplicate ai provider name %q", p.Name)
		}
		seen[p.Name] = true
		if p.Type == "huggingface" && p.Endpoint == "" {
			return fmt.Errorf("ai provider %q: endpoint is required for huggingface", p.Name)
		}
		if p.Type != "huggingface" && p.APIKey == "" {
			return fmt.Errorf("ai provider %q: api key is required for %s", p.Name, p.Type)
		}
	}
	return nil
}
