package converter

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"mapcrop/contracts"
	"mapcrop/files_manager"
	"mapcrop/metadata"
)

const outputFileMode = 0644

// Converter runs the per-file stages. It holds no per-run state.
type Converter struct {
	quality int
	log     *zap.Logger
}

func New(jpegQuality int, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{
		quality: jpegQuality,
		log:     log,
	}
}

// openImage returns the decoded raster together with the raw file bytes, which
// the caller needs for metadata.
func openImage(path string) (image.Image, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", contracts.ErrUnreadableImage, path, err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", contracts.ErrUnreadableImage, path, err)
	}
	return img, raw, nil
}

// formatFor maps the file extension to an encoder. JPG is treated as JPEG.
func formatFor(path string) (imaging.Format, error) {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", contracts.ErrUnreadableImage, path, err)
	}
	return format, nil
}

// saveImage encodes img and writes it atomically. The block is embedded only
// into JPEG output; other formats are written without metadata so no stale
// dimensions survive.
func (c *Converter) saveImage(path string, img image.Image, format imaging.Format, block *metadata.Block) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(c.quality)); err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}
	data := buf.Bytes()

	if block != nil && format == imaging.JPEG {
		withExif, err := block.Embed(data)
		if err != nil {
			return fmt.Errorf("error embedding metadata into %s: %w", path, err)
		}
		data = withExif
	}

	if err := files_manager.WriteFileAtomic(path, data, outputFileMode); err != nil {
		return fmt.Errorf("error saving %s: %w", path, err)
	}
	return nil
}
