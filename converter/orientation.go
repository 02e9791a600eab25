package converter

import (
	"fmt"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"mapcrop/metadata"
)

// NormalizeOrientation rewrites an upside-down capture (Orientation 3) right
// side up, resets the tag to normal and marks the file custom-rendered. Any
// other file is re-encoded unchanged. The file at path is overwritten and path
// is returned.
func (c *Converter) NormalizeOrientation(path string) (string, error) {
	img, raw, err := openImage(path)
	if err != nil {
		return "", err
	}
	format, err := formatFor(path)
	if err != nil {
		return "", err
	}

	orientation, err := metadata.OrientationFromBytes(path, raw)
	if err != nil {
		return "", err
	}
	block, err := metadata.BlockFromBytes(path, raw)
	if err != nil {
		return "", err
	}

	if orientation == metadata.OrientationRotated180 {
		img = imaging.Rotate180(img)
		if block != nil {
			if err := block.SetOrientation(metadata.OrientationNormal); err != nil {
				return "", fmt.Errorf("error updating orientation of %s: %w", path, err)
			}
			if err := block.MarkCustomRendered(); err != nil {
				return "", fmt.Errorf("error flagging %s: %w", path, err)
			}
		}
		c.log.Info("image flipped", zap.String("path", path))
	} else {
		c.log.Debug("image not upside down", zap.String("path", path), zap.Uint16("orientation", uint16(orientation)))
	}

	if err := c.saveImage(path, img, format, block); err != nil {
		return "", err
	}
	return path, nil
}
