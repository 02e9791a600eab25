package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"mapcrop/contracts"
	"mapcrop/metadata"
)

// RegionsFor places the bottom-left and bottom-right crop regions on a
// width x height image. When the image is smaller than the target on an axis,
// that axis' origin is clamped to 0 and the region shrinks to the image size.
func RegionsFor(width, height, targetWidth, targetHeight int) (left, right contracts.CropRegion) {
	w := min(targetWidth, width)
	h := min(targetHeight, height)
	y := max(height-targetHeight, 0)

	left = contracts.CropRegion{
		Placement: contracts.BottomLeft,
		X:         0,
		Y:         y,
		Width:     w,
		Height:    h,
	}
	right = contracts.CropRegion{
		Placement: contracts.BottomRight,
		X:         max(width-targetWidth, 0),
		Y:         y,
		Width:     w,
		Height:    h,
	}
	return left, right
}

func getImageName(filePath string) string {
	return strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
}

// BuildFilePath names an output "<outDir>/<name>_<W>x<H><suffix><ext>".
func BuildFilePath(filePath, outDir string, width, height int, suffix string) string {
	name := fmt.Sprintf("%s_%dx%d%s%s", getImageName(filePath), width, height, suffix, filepath.Ext(filePath))
	return filepath.Join(outDir, name)
}

// CropBottomRegions writes the bottom-left and bottom-right regions of the
// image at path into outDir and returns both output paths. Outputs keep the
// source metadata, with dimensions set to the region size and the
// custom-rendered flag set.
func (c *Converter) CropBottomRegions(job contracts.TransformJob, outDir string) ([]string, error) {
	path := job.SourcePath
	img, raw, err := openImage(path)
	if err != nil {
		return nil, err
	}
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}
	block, err := metadata.BlockFromBytes(path, raw)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	left, right := RegionsFor(bounds.Dx(), bounds.Dy(), job.TargetWidth, job.TargetHeight)
	if left.Width < job.TargetWidth || left.Height < job.TargetHeight {
		c.log.Warn("image smaller than crop size, regions clamped",
			zap.String("path", path),
			zap.String("image", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy())),
			zap.String("region", fmt.Sprintf("%dx%d", left.Width, left.Height)))
	}

	outputs := make([]string, 0, 2)
	for _, region := range []contracts.CropRegion{left, right} {
		cropped := imaging.Crop(img, region.Rect().Add(bounds.Min))

		if block != nil {
			if err := block.SetDimensions(region.Width, region.Height); err != nil {
				return outputs, fmt.Errorf("error updating dimensions for %s: %w", region.Placement, err)
			}
			if err := block.MarkCustomRendered(); err != nil {
				return outputs, fmt.Errorf("error flagging %s: %w", region.Placement, err)
			}
		}

		outPath := BuildFilePath(path, outDir, job.TargetWidth, job.TargetHeight, region.Placement.Suffix())
		if err := c.saveImage(outPath, cropped, format, block); err != nil {
			return outputs, err
		}
		outputs = append(outputs, outPath)
	}

	c.log.Info("regions cropped",
		zap.String("path", path),
		zap.Strings("outputs", outputs))
	return outputs, nil
}
