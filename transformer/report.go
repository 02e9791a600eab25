package transformer

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"mapcrop/contracts"
	"mapcrop/files_manager"
)

func WriteReport(path string, summary contracts.RunSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("error encoding run report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := files_manager.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("error saving run report: %w", err)
	}
	return nil
}

func ReadReport(path string) (contracts.RunSummary, error) {
	var summary contracts.RunSummary
	data, err := os.ReadFile(path)
	if err != nil {
		return summary, err
	}
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("error decoding run report: %w", err)
	}
	return summary, nil
}
