package contracts

import (
	"image"
	"time"
)

type RegionPlacement string

const (
	BottomLeft  RegionPlacement = "left-region"
	BottomRight RegionPlacement = "right-region"
)

var RegionPlacements = []RegionPlacement{BottomLeft, BottomRight}

// Suffix is appended to the output file stem, e.g. "photo_1280x1280.left-region.jpg".
func (p RegionPlacement) Suffix() string {
	return "." + string(p)
}

type CropRegion struct {
	Placement RegionPlacement
	X         int
	Y         int
	Width     int
	Height    int
}

func (r CropRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// TransformJob describes one cropper invocation. Built per discovered file,
// never persisted.
type TransformJob struct {
	SourcePath   string
	TargetWidth  int
	TargetHeight int
}

type SkippedFile struct {
	Path   string `yaml:"path"`
	Reason string `yaml:"reason"`
}

type RunSummary struct {
	RunID     string        `yaml:"run_id"`
	SourceDir string        `yaml:"source_dir"`
	DestDir   string        `yaml:"dest_dir"`
	StartedAt time.Time     `yaml:"started_at"`
	Duration  time.Duration `yaml:"duration"`
	Copied    int           `yaml:"copied"`
	Processed int           `yaml:"processed"`
	Outputs   []string      `yaml:"outputs"`
	Skipped   []SkippedFile `yaml:"skipped"`
}
