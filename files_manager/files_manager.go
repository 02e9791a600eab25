package files_manager

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mapcrop/contracts"
)

func CheckProvidedDirs(sourceDir string, destDir string) error {
	if sourceDir == "" || destDir == "" {
		return fmt.Errorf("%w: source and destination directories required", contracts.ErrInvalidConfig)
	}

	stat, err := os.Stat(sourceDir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", contracts.ErrMissingSourceDirectory, sourceDir, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", contracts.ErrMissingSourceDirectory, sourceDir)
	}

	src, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}
	dst, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}
	if src == dst {
		return fmt.Errorf("%w: source and destination directories must be different", contracts.ErrInvalidConfig)
	}
	if isWithin(src, dst) || isWithin(dst, src) {
		return fmt.Errorf("%w: source and destination directories must not be subdirectories of each other", contracts.ErrInvalidConfig)
	}
	return nil
}

func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CopyTree overlays srcDir onto dstDir. Existing destination files are
// overwritten, missing directories created, nothing is removed.
func CopyTree(srcDir string, dstDir string) (int, error) {
	copied := 0
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := CopyFile(path, target); err != nil {
			return fmt.Errorf("copy %s: %w", path, err)
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("error while copying directory tree: %w", err)
	}
	return copied, nil
}

func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}

// GetImagePaths lists the files under root eligible for processing, in
// lexical order. Subdirectories are only entered when recursive is set.
// Files with the extension that are named like crop outputs are returned
// separately in regionOutputs and never processed.
func GetImagePaths(root string, ext string, recursive bool) (files []string, regionOutputs []string, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsEligibleImage(d.Name(), ext) {
			return nil
		}
		if IsRegionOutput(d.Name()) {
			regionOutputs = append(regionOutputs, path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error while scanning directory: %w", err)
	}
	return files, regionOutputs, nil
}

// IsEligibleImage accepts names with the recognized extension, except
// AppleDouble sidecars.
func IsEligibleImage(name string, ext string) bool {
	if strings.HasPrefix(name, "._") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ext)
}

func IsRegionOutput(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, p := range contracts.RegionPlacements {
		if strings.HasSuffix(stem, p.Suffix()) {
			return true
		}
	}
	return false
}

// WriteFileAtomic writes data next to path under a temporary name and renames
// it into place, so path never holds a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
