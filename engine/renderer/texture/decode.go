package texture

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads a PNG, JPEG, BMP, TIFF or WebP image. The channel count follows the
// source color model and the rows are flipped so the first row is the bottom of the image.
//
// Parameters:
//   - r: the encoded image
//
// Returns:
//   - Image: the decoded image with 1, 3 or 4 channels
//   - error: ErrDecode wrapped with the decoder error
func Decode(r io.Reader) (Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return Image{}, errors.Mark(errors.Wrap(err, "texture: decode"), ErrDecode)
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return Image{}, errors.Wrapf(ErrDecode, "%s image has no pixels", format)
	}

	channels := channelCount(src)
	w, h := bounds.Dx(), bounds.Dy()
	out := Image{
		Pixels:   make([]byte, w*h*channels),
		Width:    w,
		Height:   h,
		Channels: channels,
		Stride:   w * channels,
	}

	if channels == 1 {
		gray := image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(gray, gray.Bounds(), src, bounds.Min, draw.Src)
		for y := 0; y < h; y++ {
			copy(out.Pixels[(h-1-y)*out.Stride:], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return out, nil
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		dst := out.Pixels[(h-1-y)*out.Stride:]
		if channels == 4 {
			copy(dst, row)
			continue
		}
		for x := 0; x < w; x++ {
			dst[x*3] = row[x*4]
			dst[x*3+1] = row[x*4+1]
			dst[x*3+2] = row[x*4+2]
		}
	}
	return out, nil
}

// channelCount maps a decoded color model to its channel count.
func channelCount(src image.Image) int {
	switch m := src.ColorModel(); m {
	case color.GrayModel, color.Gray16Model, color.AlphaModel, color.Alpha16Model:
		return 1
	case color.YCbCrModel:
		return 3
	case color.CMYKModel, color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.NYCbCrAModel:
		return 4
	default:
		if p, ok := m.(color.Palette); ok {
			for _, c := range p {
				if _, _, _, a := c.RGBA(); a != 0xffff {
					return 4
				}
			}
			return 3
		}
		return 4
	}
}
