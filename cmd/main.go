package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"mapcrop/config"
	"mapcrop/logger"
	"mapcrop/transformer"
)

func main() {
	configFile := flag.String("config", "", "Optional config file (YAML, JSON or TOML)")
	logMode := flag.String("log-mode", "dev", "Log mode: dev or prod")
	flag.String("input", config.DefaultSourceDir, "Input directory containing captured images")
	flag.String("output", config.DefaultDestDir, "Output directory for cropped images")
	flag.Int("width", config.DefaultCropWidth, "Crop width in pixels")
	flag.Int("height", config.DefaultCropHeight, "Crop height in pixels")
	flag.Bool("recursive", config.DefaultRecursive, "Process subdirectories")
	flag.String("ext", config.DefaultExtension, "Image file extension to process")
	flag.Int("quality", config.DefaultJpegQuality, "JPEG quality (1-100)")
	flag.String("report", "", "Write a YAML run report to this path")
	flag.Parse()

	cfg, err := config.Load(*configFile, flagOverrides())
	if err != nil {
		fmt.Printf("[ERROR]: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(*logMode)
	if err != nil {
		fmt.Printf("[ERROR]: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	fmt.Println(cfg)

	startTime := time.Now()

	t := transformer.NewMapillaryTransformer(cfg, log)
	ok, err := t.Transform()
	if err != nil || !ok {
		log.Error("transform failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}

	fmt.Printf("Total time taken: %s\n", time.Since(startTime))
}

var flagKeys = map[string]string{
	"input":     config.KeySourceDir,
	"output":    config.KeyDestDir,
	"width":     config.KeyCropWidth,
	"height":    config.KeyCropHeight,
	"recursive": config.KeyRecursive,
	"ext":       config.KeyExtension,
	"quality":   config.KeyJpegQuality,
	"report":    config.KeyReportPath,
}

// flagOverrides returns only the flags given on the command line, so unset
// flags do not mask the config file or environment.
func flagOverrides() map[string]any {
	overrides := map[string]any{}
	flag.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if getter, ok := f.Value.(flag.Getter); ok {
			overrides[key] = getter.Get()
		}
	})
	return overrides
}
