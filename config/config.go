package config

import (
	"fmt"

	"github.com/spf13/viper"

	"mapcrop/contracts"
)

const (
	KeySourceDir   = "source_dir"
	KeyDestDir     = "dest_dir"
	KeyCropWidth   = "crop_width"
	KeyCropHeight  = "crop_height"
	KeyRecursive   = "recursive"
	KeyExtension   = "extension"
	KeyJpegQuality = "jpeg_quality"
	KeyReportPath  = "report_path"

	EnvPrefix = "MAPCROP"
)

// Defaults. Recursion is on by default: every subdirectory of the source tree
// is processed unless turned off explicitly.
const (
	DefaultSourceDir   = "dataset/raw"
	DefaultDestDir     = "dataset/interim"
	DefaultCropWidth   = 1280
	DefaultCropHeight  = 1280
	DefaultRecursive   = true
	DefaultExtension   = ".jpg"
	DefaultJpegQuality = 100
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySourceDir, DefaultSourceDir)
	v.SetDefault(KeyDestDir, DefaultDestDir)
	v.SetDefault(KeyCropWidth, DefaultCropWidth)
	v.SetDefault(KeyCropHeight, DefaultCropHeight)
	v.SetDefault(KeyRecursive, DefaultRecursive)
	v.SetDefault(KeyExtension, DefaultExtension)
	v.SetDefault(KeyJpegQuality, DefaultJpegQuality)
	v.SetDefault(KeyReportPath, "")
}

// Load resolves the pipeline configuration. Precedence, lowest first:
// defaults, configFile (any format viper reads, when non-empty), MAPCROP_*
// environment variables, overrides.
func Load(configFile string, overrides map[string]any) (contracts.PipelineConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return contracts.PipelineConfig{}, fmt.Errorf("%w: failed to read config file %s: %v", contracts.ErrInvalidConfig, configFile, err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	cfg := contracts.PipelineConfig{
		SourceDir:   v.GetString(KeySourceDir),
		DestDir:     v.GetString(KeyDestDir),
		CropWidth:   v.GetInt(KeyCropWidth),
		CropHeight:  v.GetInt(KeyCropHeight),
		Recursive:   v.GetBool(KeyRecursive),
		Extension:   v.GetString(KeyExtension),
		JpegQuality: v.GetInt(KeyJpegQuality),
		ReportPath:  v.GetString(KeyReportPath),
	}
	if err := cfg.Validate(); err != nil {
		return contracts.PipelineConfig{}, err
	}
	return cfg, nil
}
