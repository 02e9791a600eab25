package metadata

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// Block is an editable copy of an image's EXIF chain. Everything not touched
// through its setters (capture time, GPS, device tags) is carried over as is.
type Block struct {
	rootIb *exif.IfdBuilder
}

func NewBlock() (*Block, error) {
	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return nil, err
	}
	ti := exif.NewTagIndex()
	rootIb := exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)
	return &Block{rootIb: rootIb}, nil
}

// Load returns nil without error when path has no metadata block.
func Load(path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return BlockFromBytes(path, data)
}

func BlockFromBytes(path string, data []byte) (*Block, error) {
	sl, ok, err := segments(data)
	if !ok {
		return nil, nil
	}
	if err != nil {
		return nil, corrupt(path, err)
	}
	if _, _, err := sl.FindExif(); err != nil {
		return nil, nil
	}
	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		return nil, corrupt(path, err)
	}
	return &Block{rootIb: rootIb}, nil
}

func (b *Block) SetOrientation(o Orientation) error {
	if err := b.rootIb.SetStandardWithName("Orientation", []uint16{uint16(o)}); err != nil {
		return fmt.Errorf("set orientation: %v", err)
	}
	return nil
}

func (b *Block) exifIb() (*exif.IfdBuilder, error) {
	ib, err := exif.GetOrCreateIbFromRootIb(b.rootIb, exifIfdPath)
	if err != nil {
		return nil, fmt.Errorf("get Exif IFD: %v", err)
	}
	return ib, nil
}

func (b *Block) SetDimensions(width, height int) error {
	ib, err := b.exifIb()
	if err != nil {
		return err
	}
	if err := ib.SetStandardWithName("PixelXDimension", []uint32{uint32(width)}); err != nil {
		return fmt.Errorf("set PixelXDimension: %v", err)
	}
	if err := ib.SetStandardWithName("PixelYDimension", []uint32{uint32(height)}); err != nil {
		return fmt.Errorf("set PixelYDimension: %v", err)
	}
	return nil
}

func (b *Block) MarkCustomRendered() error {
	ib, err := b.exifIb()
	if err != nil {
		return err
	}
	bt := exif.NewBuilderTag(
		exifIfdPath,
		CustomRenderedTagID,
		exifcommon.TypeUndefined,
		exif.NewIfdBuilderTagValueFromBytes(customRenderedValue),
		exifcommon.EncodeDefaultByteOrder,
	)
	if err := ib.Set(bt); err != nil {
		return fmt.Errorf("set custom-rendered flag: %v", err)
	}
	return nil
}

// Embed returns jpegData with its EXIF segment replaced by (or, when absent,
// extended with) the block.
func (b *Block) Embed(jpegData []byte) ([]byte, error) {
	sl, ok, err := segments(jpegData)
	if !ok {
		return nil, fmt.Errorf("metadata can only be embedded into JPEG data")
	}
	if err != nil {
		return nil, fmt.Errorf("parse JPEG segments: %v", err)
	}
	if err := sl.SetExif(b.rootIb); err != nil {
		return nil, fmt.Errorf("set EXIF segment: %v", err)
	}

	var out bytes.Buffer
	if err := sl.Write(&out); err != nil {
		return nil, fmt.Errorf("write JPEG segments: %v", err)
	}
	return out.Bytes(), nil
}
