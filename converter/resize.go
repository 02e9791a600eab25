package converter

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"mapcrop/metadata"
)

// Resize scales src down, preserving aspect ratio, until it fits within
// maxWidth x maxHeight and writes the result to dst. dst may equal src.
// Images already inside the box are re-encoded at their size.
func (c *Converter) Resize(src, dst string, maxWidth, maxHeight int) (string, error) {
	img, raw, err := openImage(src)
	if err != nil {
		return "", err
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return "", fmt.Errorf("invalid resize bounds %dx%d for %s", maxWidth, maxHeight, src)
	}
	return c.resize(src, dst, img, raw, imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos))
}

// HalveInPlace resizes path to half its width and height, overwriting it.
func (c *Converter) HalveInPlace(path string) (string, error) {
	return c.halve(path, func(int, int) string { return path })
}

// HalveTo writes a half-size copy of src into outDir, named
// "<name>_<W>x<H>.half<ext>", and leaves src untouched.
func (c *Converter) HalveTo(src, outDir string) (string, error) {
	return c.halve(src, func(w, h int) string { return HalfPath(src, outDir, w, h) })
}

func HalfPath(src, outDir string, halfWidth, halfHeight int) string {
	return BuildFilePath(src, outDir, halfWidth, halfHeight, ".half")
}

func (c *Converter) halve(src string, dstFor func(w, h int) string) (string, error) {
	img, raw, err := openImage(src)
	if err != nil {
		return "", err
	}
	b := img.Bounds()
	w := max(b.Dx()/2, 1)
	h := max(b.Dy()/2, 1)
	// Exactly half on both axes, odd sizes rounded down.
	return c.resize(src, dstFor(w, h), img, raw, imaging.Resize(img, w, h, imaging.Lanczos))
}

// resize writes the already resampled raster to dst with the metadata of src
// updated to its size.
func (c *Converter) resize(src, dst string, img image.Image, raw []byte, resized *image.NRGBA) (string, error) {
	format, err := formatFor(dst)
	if err != nil {
		return "", err
	}

	from := img.Bounds()
	to := resized.Bounds()

	block, err := metadata.BlockFromBytes(src, raw)
	if err != nil {
		return "", err
	}
	if block != nil {
		if err := block.SetDimensions(to.Dx(), to.Dy()); err != nil {
			return "", fmt.Errorf("error updating dimensions of %s: %w", dst, err)
		}
		if err := block.MarkCustomRendered(); err != nil {
			return "", fmt.Errorf("error flagging %s: %w", dst, err)
		}
	}

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}
	if err := c.saveImage(dst, resized, format, block); err != nil {
		return "", err
	}

	c.log.Info("image resized",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.String("from", fmt.Sprintf("%dx%d", from.Dx(), from.Dy())),
		zap.String("to", fmt.Sprintf("%dx%d", to.Dx(), to.Dy())))
	return dst, nil
}
