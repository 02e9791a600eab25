// Package testutil generates JPEG fixtures with embedded EXIF for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"testing"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

var (
	Red  = color.RGBA{R: 255, A: 255}
	Blue = color.RGBA{B: 255, A: 255}
)

// Tags selects the EXIF fields written into a fixture. Zero values are omitted.
type Tags struct {
	Orientation      uint16
	DateTimeOriginal string
	PixelXDimension  uint32
	PixelYDimension  uint32
}

// Quadrants paints the top-left quadrant red and the rest blue, so a 180°
// rotation moves the red block to the bottom-right corner.
func Quadrants(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 && y < height/2 {
				img.Set(x, y, Red)
			} else {
				img.Set(x, y, Blue)
			}
		}
	}
	return img
}

// Halves paints the left half red and the right half blue.
func Halves(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, Red)
			} else {
				img.Set(x, y, Blue)
			}
		}
	}
	return img
}

// WriteJPEG encodes img at full quality to path, embedding tags when non-nil.
func WriteJPEG(t testing.TB, path string, img image.Image, tags *Tags) {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	data := buf.Bytes()

	if tags != nil {
		data = embed(t, data, tags)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
}

func embed(t testing.TB, data []byte, tags *Tags) []byte {
	t.Helper()

	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		t.Fatalf("failed to load IFD mapping: %v", err)
	}
	ti := exif.NewTagIndex()
	rootIb := exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)

	if tags.Orientation != 0 {
		if err := rootIb.SetStandardWithName("Orientation", []uint16{tags.Orientation}); err != nil {
			t.Fatalf("failed to set Orientation: %v", err)
		}
	}

	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/Exif")
	if err != nil {
		t.Fatalf("failed to create Exif IFD: %v", err)
	}
	if tags.DateTimeOriginal != "" {
		if err := exifIb.SetStandardWithName("DateTimeOriginal", tags.DateTimeOriginal); err != nil {
			t.Fatalf("failed to set DateTimeOriginal: %v", err)
		}
	}
	if tags.PixelXDimension != 0 || tags.PixelYDimension != 0 {
		if err := exifIb.SetStandardWithName("PixelXDimension", []uint32{tags.PixelXDimension}); err != nil {
			t.Fatalf("failed to set PixelXDimension: %v", err)
		}
		if err := exifIb.SetStandardWithName("PixelYDimension", []uint32{tags.PixelYDimension}); err != nil {
			t.Fatalf("failed to set PixelYDimension: %v", err)
		}
	}

	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseBytes(data)
	if err != nil {
		t.Fatalf("failed to parse fixture JPEG: %v", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)
	if err := sl.SetExif(rootIb); err != nil {
		t.Fatalf("failed to set EXIF: %v", err)
	}

	var out bytes.Buffer
	if err := sl.Write(&out); err != nil {
		t.Fatalf("failed to write fixture JPEG: %v", err)
	}
	return out.Bytes()
}

// WriteCorruptExifJPEG writes a decodable JPEG whose APP1 EXIF segment points
// its first IFD far past the end of the segment.
func WriteCorruptExifJPEG(t testing.TB, path string, img image.Image) {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	data := buf.Bytes()

	payload := []byte("Exif\x00\x00II\x2a\x00\xf0\xff\xff\x7f")
	segLen := len(payload) + 2
	app1 := append([]byte{0xFF, 0xE1, byte(segLen >> 8), byte(segLen)}, payload...)

	out := make([]byte, 0, len(data)+len(app1))
	out = append(out, data[:2]...)
	out = append(out, app1...)
	out = append(out, data[2:]...)

	if err := os.WriteFile(path, out, 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
}

// IsReddish tolerates JPEG ringing around solid color blocks.
func IsReddish(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > 180 && g>>8 < 80 && b>>8 < 80
}

func IsBluish(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return b>>8 > 180 && r>>8 < 80 && g>>8 < 80
}
