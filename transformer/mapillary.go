package transformer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mapcrop/contracts"
	"mapcrop/converter"
	"mapcrop/files_manager"
)

var _ contracts.Transformer = (*MapillaryTransformer)(nil)

// MapillaryTransformer turns a tree of Mapillary captures (4624x3468, some
// taken upside down) into pairs of bottom crops ready for detector training.
type MapillaryTransformer struct {
	cfg contracts.PipelineConfig
	log *zap.Logger
}

func NewMapillaryTransformer(cfg contracts.PipelineConfig, log *zap.Logger) *MapillaryTransformer {
	if log == nil {
		log = zap.NewNop()
	}
	return &MapillaryTransformer{cfg: cfg, log: log}
}

// Transform runs the pipeline and, when configured, writes the run report.
// It returns false only for errors that stop the run before or during setup.
func (t *MapillaryTransformer) Transform() (bool, error) {
	summary, err := Run(t.cfg, t.log)
	if err != nil {
		return false, err
	}
	if t.cfg.ReportPath != "" {
		if err := WriteReport(t.cfg.ReportPath, summary); err != nil {
			return false, err
		}
		t.log.Info("report written", zap.String("path", t.cfg.ReportPath))
	}
	return true, nil
}

// Run copies cfg.SourceDir over cfg.DestDir and processes the copy.
func Run(cfg contracts.PipelineConfig, log *zap.Logger) (contracts.RunSummary, error) {
	summary := contracts.RunSummary{
		RunID:     uuid.NewString(),
		SourceDir: cfg.SourceDir,
		DestDir:   cfg.DestDir,
		StartedAt: time.Now(),
	}
	log = log.With(zap.String("run_id", summary.RunID))

	if err := cfg.Validate(); err != nil {
		return summary, err
	}
	if err := files_manager.CheckProvidedDirs(cfg.SourceDir, cfg.DestDir); err != nil {
		return summary, err
	}
	if err := os.MkdirAll(cfg.DestDir, 0755); err != nil {
		return summary, fmt.Errorf("failed to create destination directory: %w", err)
	}

	copied, err := files_manager.CopyTree(cfg.SourceDir, cfg.DestDir)
	summary.Copied = copied
	if err != nil {
		return summary, err
	}
	log.Info("source tree copied",
		zap.String("source", cfg.SourceDir),
		zap.String("destination", cfg.DestDir),
		zap.Int("files", copied))

	if err := ProcessFolder(cfg, cfg.DestDir, log, &summary); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(summary.StartedAt)
	log.Info("run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Int("outputs", len(summary.Outputs)),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// ProcessFolder normalizes, halves and crops every eligible image under
// folder, one at a time, replacing each with its two crops. A file that fails
// is logged, recorded in summary and left in place.
func ProcessFolder(cfg contracts.PipelineConfig, folder string, log *zap.Logger, summary *contracts.RunSummary) error {
	log.Info("processing directory", zap.String("path", folder), zap.Bool("recursive", cfg.Recursive))

	files, regionOutputs, err := files_manager.GetImagePaths(folder, cfg.Extension, cfg.Recursive)
	if err != nil {
		return err
	}
	for _, file := range regionOutputs {
		log.Debug("ignoring region output", zap.String("path", file))
	}

	conv := converter.New(cfg.JpegQuality, log)
	for _, file := range files {
		outputs, err := processFile(cfg, conv, file, log)
		if err != nil {
			log.Error("skipping file", zap.String("path", file), zap.Error(err))
			summary.Skipped = append(summary.Skipped, contracts.SkippedFile{Path: file, Reason: err.Error()})
			continue
		}
		summary.Processed++
		summary.Outputs = append(summary.Outputs, outputs...)
	}
	return nil
}

func processFile(cfg contracts.PipelineConfig, conv *converter.Converter, file string, log *zap.Logger) ([]string, error) {
	log.Info("processing file", zap.String("path", file))

	normalized, err := conv.NormalizeOrientation(file)
	if err != nil {
		return nil, err
	}
	resized, err := conv.HalveInPlace(normalized)
	if err != nil {
		return nil, err
	}

	job := contracts.TransformJob{
		SourcePath:   resized,
		TargetWidth:  cfg.CropWidth,
		TargetHeight: cfg.CropHeight,
	}
	outputs, err := conv.CropBottomRegions(job, filepath.Dir(resized))
	if err != nil {
		return nil, err
	}

	if err := os.Remove(resized); err != nil {
		return outputs, fmt.Errorf("failed to remove intermediate %s: %w", resized, err)
	}
	return outputs, nil
}
