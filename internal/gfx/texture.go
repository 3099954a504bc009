package gfx

import "fmt"

// TextureFormat is the internal storage format of a texture.
type TextureFormat uint8

const (
	FormatNone TextureFormat = iota
	FormatR8
	FormatRGB8
	FormatRGBA8
)

func (f TextureFormat) String() string {
	switch f {
	case FormatR8:
		return "R8"
	case FormatRGB8:
		return "RGB8"
	case FormatRGBA8:
		return "RGBA8"
	}
	return "None"
}

func (f TextureFormat) Channels() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRGB8:
		return 3
	case FormatRGBA8:
		return 4
	}
	return 0
}

// FormatForChannels maps an 8-bit channel count to a storage format. There
// is no fallback: counts without a mapping are rejected.
func FormatForChannels(channels int) (TextureFormat, error) {
	switch channels {
	case 1:
		return FormatR8, nil
	case 3:
		return FormatRGB8, nil
	case 4:
		return FormatRGBA8, nil
	}
	return FormatNone, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
}

// Texture2D is an immutable 2D texture uploaded once at creation.
type Texture2D struct {
	ctx    *Context
	id     uint32
	width  int
	height int
	format TextureFormat
}

// NewTexture2D uploads tightly packed, row-major 8-bit pixels.
func NewTexture2D(ctx *Context, width, height, channels int, pixels []byte) (*Texture2D, error) {
	if err := ctx.checkReady(); err != nil {
		return nil, err
	}
	format, err := FormatForChannels(channels)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: texture size %dx%d", ErrUsage, width, height)
	}
	if want := width * height * channels; len(pixels) != want {
		return nil, fmt.Errorf("%w: texture %dx%d %s needs %d bytes, got %d",
			ErrUsage, width, height, format, want, len(pixels))
	}

	id := ctx.dev.GenTexture()
	if id == 0 {
		return nil, fmt.Errorf("%w: failed to allocate texture", ErrDevice)
	}
	t := &Texture2D{ctx: ctx, id: id, width: width, height: height, format: format}
	t.Bind(0)
	ctx.dev.TexImage2D(int32(width), int32(height), format, pixels)

	ctx.logger().Debug("texture created", "id", id, "width", width, "height", height, "format", format)
	return t, nil
}

func (t *Texture2D) ID() uint32 { return t.id }

func (t *Texture2D) Width() int { return t.width }

func (t *Texture2D) Height() int { return t.height }

func (t *Texture2D) Format() TextureFormat { return t.format }

// Bind attaches the texture to the given texture unit.
func (t *Texture2D) Bind(unit uint32) {
	t.ctx.bindTexture(unit, t.id)
}

func (t *Texture2D) Release() {
	if t.id == 0 {
		return
	}
	t.ctx.deleteTexture(t.id)
	t.id = 0
}
