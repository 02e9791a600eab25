package metadata

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"

	"mapcrop/contracts"
	"mapcrop/files_manager"
)

type Orientation uint16

const (
	OrientationAbsent     Orientation = 0
	OrientationNormal     Orientation = 1
	OrientationRotated180 Orientation = 3
)

const (
	exifIfdPath = "IFD/Exif"

	// CustomRenderedTagID marks files whose rendering is governed by this
	// pipeline rather than the capture device. Value is the single byte '1'.
	CustomRenderedTagID uint16 = 41729
)

var customRenderedValue = []byte("1")

// Snapshot is a read-only view of the fields the pipeline consumes.
type Snapshot struct {
	Orientation      Orientation
	PixelXDimension  int
	PixelYDimension  int
	CustomRendered   bool
	DateTimeOriginal string
}

func corrupt(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", contracts.ErrCorruptMetadata, path, err)
}

func isJPEG(data []byte) bool {
	return len(data) > 2 && data[0] == 0xFF && data[1] == 0xD8
}

// segments parses the JPEG marker structure. ok is false for anything that is
// not a JPEG stream, which callers treat as "no metadata".
func segments(data []byte) (sl *jpegstructure.SegmentList, ok bool, err error) {
	if !isJPEG(data) {
		return nil, false, nil
	}
	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseBytes(data)
	if err != nil {
		return nil, true, err
	}
	sl, ok = intfc.(*jpegstructure.SegmentList)
	if !ok {
		return nil, true, fmt.Errorf("unexpected media context %T", intfc)
	}
	return sl, true, nil
}

// collect returns the parsed EXIF index, or found=false when the file carries
// no EXIF segment at all.
func collect(data []byte) (index exif.IfdIndex, found bool, err error) {
	sl, ok, err := segments(data)
	if !ok {
		return index, false, nil
	}
	if err != nil {
		return index, true, err
	}
	_, segment, err := sl.FindExif()
	if err != nil {
		return index, false, nil
	}

	rawExif, err := exif.SearchAndExtractExif(segment.Data)
	if err != nil {
		return index, true, fmt.Errorf("EXIF segment without TIFF header: %v", err)
	}

	im := exifcommon.NewIfdMapping()
	ti := exif.NewTagIndex()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return index, true, err
	}

	_, index, err = exif.Collect(im, ti, rawExif)
	if err != nil {
		return index, true, err
	}
	return index, true, nil
}

func ReadOrientation(path string) (Orientation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return OrientationAbsent, err
	}
	return OrientationFromBytes(path, data)
}

// OrientationFromBytes reads the IFD0 Orientation tag from an in-memory file.
// path is only used in error messages.
func OrientationFromBytes(path string, data []byte) (Orientation, error) {
	index, found, err := collect(data)
	if err != nil {
		return OrientationAbsent, corrupt(path, err)
	}
	if !found {
		return OrientationAbsent, nil
	}
	return orientationOf(path, index.RootIfd)
}

func orientationOf(path string, ifd *exif.Ifd) (Orientation, error) {
	tags, err := ifd.FindTagWithName("Orientation")
	if err != nil || len(tags) == 0 {
		return OrientationAbsent, nil
	}
	val, err := tags[0].Value()
	if err != nil {
		return OrientationAbsent, corrupt(path, err)
	}
	if shorts, ok := val.([]uint16); ok && len(shorts) > 0 {
		return Orientation(shorts[0]), nil
	}
	return OrientationAbsent, nil
}

// Inspect returns nil without error when the file has no metadata block.
func Inspect(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	index, found, err := collect(data)
	if err != nil {
		return nil, corrupt(path, err)
	}
	if !found {
		return nil, nil
	}

	snap := &Snapshot{}
	if snap.Orientation, err = orientationOf(path, index.RootIfd); err != nil {
		return nil, err
	}

	exifIfd, ok := index.Lookup[exifIfdPath]
	if !ok {
		return snap, nil
	}
	snap.PixelXDimension = intTag(exifIfd, "PixelXDimension")
	snap.PixelYDimension = intTag(exifIfd, "PixelYDimension")

	if tags, err := exifIfd.FindTagWithName("DateTimeOriginal"); err == nil && len(tags) > 0 {
		if val, err := tags[0].Value(); err == nil {
			if s, ok := val.(string); ok {
				snap.DateTimeOriginal = s
			}
		}
	}

	if tags, err := exifIfd.FindTagWithId(CustomRenderedTagID); err == nil && len(tags) > 0 {
		snap.CustomRendered = isCustomRendered(tags[0])
	}
	return snap, nil
}

// isCustomRendered compares only the first UnitCount bytes: 41729 is also the
// standard SceneType tag, which go-exif re-encodes padded to four bytes.
func isCustomRendered(ite *exif.IfdTagEntry) bool {
	raw, err := ite.GetRawBytes()
	if err != nil {
		return false
	}
	n := int(ite.UnitCount())
	if n != len(customRenderedValue) || len(raw) < n {
		return false
	}
	return bytes.Equal(raw[:n], customRenderedValue)
}

func intTag(ifd *exif.Ifd, name string) int {
	tags, err := ifd.FindTagWithName(name)
	if err != nil || len(tags) == 0 {
		return 0
	}
	val, err := tags[0].Value()
	if err != nil {
		return 0
	}
	switch v := val.(type) {
	case []uint32:
		if len(v) > 0 {
			return int(v[0])
		}
	case []uint16:
		if len(v) > 0 {
			return int(v[0])
		}
	}
	return 0
}

// WriteOrientation rewrites the Orientation tag in place. A file without a
// metadata block gets a fresh one.
func WriteOrientation(path string, o Orientation) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	block, err := BlockFromBytes(path, data)
	if err != nil {
		return err
	}
	if block == nil {
		if block, err = NewBlock(); err != nil {
			return err
		}
	}
	if err := block.SetOrientation(o); err != nil {
		return err
	}
	out, err := block.Embed(data)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return files_manager.WriteFileAtomic(path, out, info.Mode().Perm())
}

// ReadAndRewriteDimensions loads the metadata block of path with the pixel
// dimension fields set to width x height and the custom-rendered flag set.
// It returns nil when the file has no metadata.
func ReadAndRewriteDimensions(path string, width, height int) (*Block, error) {
	block, err := Load(path)
	if err != nil || block == nil {
		return nil, err
	}
	if err := block.SetDimensions(width, height); err != nil {
		return nil, err
	}
	if err := block.MarkCustomRendered(); err != nil {
		return nil, err
	}
	return block, nil
}
