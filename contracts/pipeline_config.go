package contracts

import (
	"fmt"
	"path/filepath"
)

// PipelineConfig is built once before a run and passed by value into every
// pipeline call. Nothing mutates it afterwards.
type PipelineConfig struct {
	SourceDir   string `yaml:"source_dir"`
	DestDir     string `yaml:"dest_dir"`
	CropWidth   int    `yaml:"crop_width"`
	CropHeight  int    `yaml:"crop_height"`
	Recursive   bool   `yaml:"recursive"`
	Extension   string `yaml:"extension"`
	JpegQuality int    `yaml:"jpeg_quality"`
	ReportPath  string `yaml:"report_path,omitempty"`
}

func (c PipelineConfig) Validate() error {
	if c.SourceDir == "" || c.DestDir == "" {
		return fmt.Errorf("%w: source and destination directories required", ErrInvalidConfig)
	}
	if filepath.Clean(c.SourceDir) == filepath.Clean(c.DestDir) {
		return fmt.Errorf("%w: source and destination directories must be different", ErrInvalidConfig)
	}
	if c.CropWidth <= 0 || c.CropHeight <= 0 {
		return fmt.Errorf("%w: crop size must be positive, got %dx%d", ErrInvalidConfig, c.CropWidth, c.CropHeight)
	}
	if c.JpegQuality < 1 || c.JpegQuality > 100 {
		return fmt.Errorf("%w: jpeg quality must be in 1..100, got %d", ErrInvalidConfig, c.JpegQuality)
	}
	if c.Extension == "" || c.Extension[0] != '.' {
		return fmt.Errorf("%w: extension must start with a dot, got %q", ErrInvalidConfig, c.Extension)
	}
	return nil
}

func (c PipelineConfig) String() string {
	return fmt.Sprintf("Mapillary transform configuration:\n"+
		"\tSource directory: %s\n"+
		"\tDestination directory: %s\n"+
		"\tCrop width: %d\n"+
		"\tCrop height: %d\n"+
		"\tRecursive: %t",
		c.SourceDir, c.DestDir, c.CropWidth, c.CropHeight, c.Recursive)
}
