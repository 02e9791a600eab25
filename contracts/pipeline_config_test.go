package contracts

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() PipelineConfig {
	return PipelineConfig{
		SourceDir:   "dataset/raw",
		DestDir:     "dataset/interim",
		CropWidth:   1280,
		CropHeight:  1280,
		Recursive:   true,
		Extension:   ".jpg",
		JpegQuality: 100,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"empty source", func(c *PipelineConfig) { c.SourceDir = "" }},
		{"same directories", func(c *PipelineConfig) { c.DestDir = "dataset/raw/" }},
		{"zero width", func(c *PipelineConfig) { c.CropWidth = 0 }},
		{"negative height", func(c *PipelineConfig) { c.CropHeight = -1 }},
		{"quality too high", func(c *PipelineConfig) { c.JpegQuality = 101 }},
		{"extension without dot", func(c *PipelineConfig) { c.Extension = "jpg" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestString(t *testing.T) {
	s := validConfig().String()
	for _, want := range []string{"dataset/raw", "dataset/interim", "Crop width: 1280", "Recursive: true"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in %q", want, s)
		}
	}
}
