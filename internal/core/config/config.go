// Package config provides configuration management for segmentation services.
package config

import (
	"fmt"

	"github.com/qhosting/smsegment/internal/types"
)

// SegmenterConfig holds configuration for the segmentation CLI and stores.
type SegmenterConfig struct {
	DatabaseURL  string
	PreviewSize  int
	ContactLimit int
	LogLevel     string
	LogFormat    string
}

// DefaultSegmenterConfig returns configuration with default values.
func DefaultSegmenterConfig() *SegmenterConfig {
	return &SegmenterConfig{
		PreviewSize:  10,
		ContactLimit: 50000,
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

// Validate checks preview size bounds and a positive contact limit.
// Callers bound input size here rather than cancelling mid-evaluation;
// the engine itself has no timeout concept.
func (cfg *SegmenterConfig) Validate() error {
	if cfg.PreviewSize <= 0 {
		return fmt.Errorf("preview_size must be positive, got %d", cfg.PreviewSize)
	}
	if cfg.PreviewSize > types.MaxPreviewSize {
		return fmt.Errorf("preview_size must be at most %d, got %d", types.MaxPreviewSize, cfg.PreviewSize)
	}
	if cfg.ContactLimit <= 0 {
		return fmt.Errorf("contact_limit must be positive, got %d", cfg.ContactLimit)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got %q", cfg.LogFormat)
	}
	return nil
}
