package gemini

import (
	"fmt"
	"strings"

	"github.com/phrazzld/hanzi-api/internal/config"
	"github.com/phrazzld/hanzi-api/internal/generation"
)

// ValidateConfig checks the settings needed to construct a GeminiGenerator.
func ValidateConfig(cfg config.LLMConfig) error {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.ModelName) == "" {
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative", generation.ErrInvalidConfig)
	}
	if cfg.RetryDelaySeconds < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", generation.ErrInvalidConfig)
	}
	return nil
}
