package files_manager

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mapcrop/contracts"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestCheckProvidedDirs(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "raw")
	if err := os.Mkdir(src, 0755); err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	t.Run("valid", func(t *testing.T) {
		if err := CheckProvidedDirs(src, filepath.Join(root, "interim")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		err := CheckProvidedDirs(filepath.Join(root, "nope"), filepath.Join(root, "interim"))
		if !errors.Is(err, contracts.ErrMissingSourceDirectory) {
			t.Errorf("expected ErrMissingSourceDirectory, got %v", err)
		}
	})

	t.Run("source is a file", func(t *testing.T) {
		file := filepath.Join(root, "file.jpg")
		writeFile(t, file, "x")
		err := CheckProvidedDirs(file, filepath.Join(root, "interim"))
		if !errors.Is(err, contracts.ErrMissingSourceDirectory) {
			t.Errorf("expected ErrMissingSourceDirectory, got %v", err)
		}
	})

	t.Run("nested", func(t *testing.T) {
		err := CheckProvidedDirs(src, filepath.Join(src, "out"))
		if !errors.Is(err, contracts.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for dest inside source, got %v", err)
		}
		err = CheckProvidedDirs(src, root)
		if !errors.Is(err, contracts.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for source inside dest, got %v", err)
		}
	})

	t.Run("sibling with common prefix", func(t *testing.T) {
		if err := CheckProvidedDirs(src, src+"-out"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCopyTreeOverlay(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")

	writeFile(t, filepath.Join(src, "a.jpg"), "new-a")
	writeFile(t, filepath.Join(src, "zone", "b.jpg"), "b")
	writeFile(t, filepath.Join(dst, "a.jpg"), "old-a")
	writeFile(t, filepath.Join(dst, "keep.txt"), "keep")

	copied, err := CopyTree(src, dst)
	if err != nil {
		t.Fatalf("CopyTree failed: %v", err)
	}
	if copied != 2 {
		t.Errorf("expected 2 copied files, got %d", copied)
	}

	checks := map[string]string{
		"a.jpg":                        "new-a",
		filepath.Join("zone", "b.jpg"): "b",
		"keep.txt":                     "keep",
	}
	for rel, want := range checks {
		got, err := os.ReadFile(filepath.Join(dst, rel))
		if err != nil {
			t.Errorf("missing %s: %v", rel, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s: got %q, want %q", rel, got, want)
		}
	}

	// A second run over a populated destination must not fail.
	if _, err := CopyTree(src, dst); err != nil {
		t.Fatalf("second CopyTree failed: %v", err)
	}
}

func TestGetImagePaths(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"b.jpg",
		"a.JPG",
		"notes.txt",
		"._a.jpg",
		"c_1280x1280.left-region.jpg",
		"c_1280x1280.right-region.jpg",
		filepath.Join("zone", "d.jpg"),
		filepath.Join("zone", "deep", "e.jpg"),
	} {
		writeFile(t, filepath.Join(root, rel), "x")
	}

	t.Run("recursive", func(t *testing.T) {
		got, regionOutputs, err := GetImagePaths(root, ".jpg", true)
		if err != nil {
			t.Fatalf("GetImagePaths failed: %v", err)
		}
		want := []string{
			filepath.Join(root, "a.JPG"),
			filepath.Join(root, "b.jpg"),
			filepath.Join(root, "zone", "d.jpg"),
			filepath.Join(root, "zone", "deep", "e.jpg"),
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
		wantRegions := []string{
			filepath.Join(root, "c_1280x1280.left-region.jpg"),
			filepath.Join(root, "c_1280x1280.right-region.jpg"),
		}
		if !reflect.DeepEqual(regionOutputs, wantRegions) {
			t.Errorf("region outputs: got %v, want %v", regionOutputs, wantRegions)
		}
	})

	t.Run("top level only", func(t *testing.T) {
		got, _, err := GetImagePaths(root, ".jpg", false)
		if err != nil {
			t.Fatalf("GetImagePaths failed: %v", err)
		}
		want := []string{
			filepath.Join(root, "a.JPG"),
			filepath.Join(root, "b.jpg"),
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jpg")
	writeFile(t, path, "old")

	if err := WriteFileAtomic(path, []byte("new"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("got %q, want %q", got, "new")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
