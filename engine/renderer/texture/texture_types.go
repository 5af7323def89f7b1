// Package texture decodes image files and materializes them as sampled 2D textures.
// Loading by path is idempotent and failures return the NotFound sentinel instead of aborting.
package texture

import (
	"math"

	"github.com/cockroachdb/errors"
)

// NotFound is returned in place of a texture index when a load fails.
const NotFound = math.MaxUint32

var (
	// ErrUnsupportedChannels is returned for images that are neither 3 nor 4 channel.
	ErrUnsupportedChannels = errors.New("texture: unsupported channel count")

	// ErrDecode is returned when an image file cannot be read or decoded.
	ErrDecode = errors.New("texture: could not decode image")
)

// Image is a decoded image with tightly packed 8-bit channels, rows stored bottom-up.
type Image struct {
	Pixels   []byte
	Width    int
	Height   int
	Channels int
	// Stride is the byte length of one row.
	Stride int
}

// RGBA returns the image expanded to 4 channels. 4-channel images are returned as is.
//
// Returns:
//   - Image: the RGBA image
//   - error: ErrUnsupportedChannels for channel counts other than 3 or 4
func (img Image) RGBA() (Image, error) {
	switch img.Channels {
	case 4:
		return img, nil
	case 3:
		out := Image{
			Pixels:   make([]byte, img.Width*img.Height*4),
			Width:    img.Width,
			Height:   img.Height,
			Channels: 4,
			Stride:   img.Width * 4,
		}
		for i, j := 0, 0; i+2 < len(img.Pixels); i, j = i+3, j+4 {
			out.Pixels[j] = img.Pixels[i]
			out.Pixels[j+1] = img.Pixels[i+1]
			out.Pixels[j+2] = img.Pixels[i+2]
			out.Pixels[j+3] = 0xff
		}
		return out, nil
	default:
		return Image{}, errors.Wrapf(ErrUnsupportedChannels, "%d channels", img.Channels)
	}
}

// Solid returns a 1x1 RGBA image of a single color.
func Solid(r, g, b, a uint8) Image {
	return Image{Pixels: []byte{r, g, b, a}, Width: 1, Height: 1, Channels: 4, Stride: 4}
}
