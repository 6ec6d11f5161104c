package imageproc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ThumbnailSide is the longest edge of the thumbnail embedded in pet_photo.
const ThumbnailSide = 256

// ErrUnsupportedFormat is returned for uploads that are not JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DetectFormat inspects the raw bytes and returns "jpeg", "png" or "" if the
// data is neither. PetFriends accepts only these two.
func DetectFormat(data []byte) string {
	// JPEG: FF D8 FF
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}) {
		return "png"
	}
	return ""
}

// Photo is a decoded upload.
type Photo struct {
	Format string
	Image  image.Image
}

// Decode checks the upload signature and decodes it, honouring EXIF orientation.
func Decode(data []byte) (*Photo, error) {
	format := DetectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return &Photo{Format: format, Image: img}, nil
}

// Thumbnail shrinks the photo to fit within side x side, never enlarging it.
func (p *Photo) Thumbnail(side int) image.Image {
	b := p.Image.Bounds()
	if b.Dx() <= side && b.Dy() <= side {
		return p.Image
	}
	return imaging.Fit(p.Image, side, side, imaging.Lanczos)
}

// DataURI renders the thumbnail as the data:image/jpeg;base64 string the
// service puts in pet_photo.
func (p *Photo) DataURI(side int) (string, error) {
	var buf bytes.Buffer
	// Flatten onto white so PNG transparency does not turn black in JPEG.
	thumb := p.Thumbnail(side)
	canvas := imaging.New(thumb.Bounds().Dx(), thumb.Bounds().Dy(), image.White)
	flat := imaging.Overlay(canvas, thumb, image.Pt(0, 0), 1.0)
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
