package core

import "github.com/go-gl/mathgl/mgl32"

// Color is a linear RGBA colour with float components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorGray  = Color{0.8, 0.8, 0.8, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

// NewColor builds a Color from a 3- or 4-element slice, as found in config
// files. Alpha defaults to 1.
func NewColor(c []float32) (Color, bool) {
	switch len(c) {
	case 3:
		return Color{c[0], c[1], c[2], 1}, true
	case 4:
		return Color{c[0], c[1], c[2], c[3]}, true
	}
	return Color{}, false
}

func (c Color) Vec3() mgl32.Vec3 { return mgl32.Vec3{c.R, c.G, c.B} }

func (c Color) Vec4() mgl32.Vec4 { return mgl32.Vec4{c.R, c.G, c.B, c.A} }

// Scale multiplies the RGB components by s and leaves alpha untouched.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}
