// Package textures decodes image files into tightly packed 8-bit pixel data
// with an explicit channel count, ready for gfx.NewTexture2D.
package textures

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"render-sandbox/internal/gfx"
)

// Image holds CPU-side pixels, row-major and top-to-bottom.
type Image struct {
	Name     string
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}

// Load reads and decodes an image file.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()
	return Decode(path, f)
}

// Decode reads one image in any registered format.
func Decode(name string, r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}
	return FromImage(name, img)
}

// FromImage converts a decoded image. The channel count follows the source
// colour model: grey stays one channel, opaque YCbCr (JPEG) becomes RGB and
// RGBA-like models become RGBA. 16-bit and CMYK sources have no 8-bit
// mapping here and are rejected rather than converted to a guessed format.
func FromImage(name string, img image.Image) (*Image, error) {
	b := img.Bounds()
	out := &Image{Name: name, Width: b.Dx(), Height: b.Dy()}

	switch src := img.(type) {
	case *image.Gray:
		out.Channels = 1
		out.Pixels = make([]byte, 0, out.Width*out.Height)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			out.Pixels = append(out.Pixels, src.Pix[off:off+out.Width]...)
		}
	case *image.YCbCr:
		out.Channels = 3
		rgba := toNRGBA(src)
		out.Pixels = make([]byte, 0, out.Width*out.Height*3)
		for i := 0; i < len(rgba.Pix); i += 4 {
			out.Pixels = append(out.Pixels, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
		}
	case *image.NRGBA:
		out.Channels = 4
		if src.Stride == out.Width*4 && b.Min == (image.Point{}) {
			out.Pixels = append([]byte(nil), src.Pix[:out.Width*out.Height*4]...)
		} else {
			out.Pixels = toNRGBA(src).Pix
		}
	case *image.RGBA, *image.Paletted, *image.NYCbCrA:
		out.Channels = 4
		out.Pixels = toNRGBA(src).Pix
	default:
		return nil, fmt.Errorf("texture %q: %w: colour model %T", name, gfx.ErrUnsupportedFormat, img)
	}
	return out, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// Solid returns a 1x1 RGBA image of one colour.
func Solid(name string, r, g, b, a uint8) *Image {
	return &Image{Name: name, Width: 1, Height: 1, Channels: 4, Pixels: []byte{r, g, b, a}}
}

// FlipVertical reverses the row order in place, for APIs whose texture
// origin is the bottom-left corner.
func (im *Image) FlipVertical() {
	row := im.Width * im.Channels
	tmp := make([]byte, row)
	for top, bottom := 0, im.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := im.Pixels[top*row : (top+1)*row]
		bt := im.Pixels[bottom*row : (bottom+1)*row]
		copy(tmp, t)
		copy(t, bt)
		copy(bt, tmp)
	}
}

// Upload creates a GPU texture from the image.
func (im *Image) Upload(ctx *gfx.Context) (*gfx.Texture2D, error) {
	tex, err := gfx.NewTexture2D(ctx, im.Width, im.Height, im.Channels, im.Pixels)
	if err != nil {
		return nil, fmt.Errorf("upload texture %q: %w", im.Name, err)
	}
	return tex, nil
}
