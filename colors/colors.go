package colors

// package colors contains the Color type used to tint debug drawings of skeletons, along with functions to quickly generate Colors
// by name (i.e. "White()", "Blue()", "Green()", etc).

import (
	"image/color"

	"github.com/solarlune/tetrapose/math32"
)

// A Color represents a color, containing R, G, B, and A components, each expected to range from 0 to 1. Color implements
// image/color.Color, so it can be handed straight to ebiten's drawing functions.
type Color struct {
	R, G, B, A float32
}

// NewColor returns a new Color, with the provided R, G, B, and A components expected to range from 0 to 1.
func NewColor(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// SetRGBA sets every component of the Color.
func (c *Color) SetRGBA(r, g, b, a float32) {
	c.R = r
	c.G = g
	c.B = b
	c.A = a
}

// AddRGB adds the value to the R, G, and B components of the Color.
func (c Color) AddRGB(value float32) Color {
	c.R += value
	c.G += value
	c.B += value
	return c
}

// Lerp returns a Color between c and other by the percentage given.
func (c Color) Lerp(other Color, percentage float32) Color {
	return Color{
		math32.Lerp(c.R, other.R, percentage),
		math32.Lerp(c.G, other.G, percentage),
		math32.Lerp(c.B, other.B, percentage),
		math32.Lerp(c.A, other.A, percentage),
	}
}

// Alpha returns a copy of the Color with its alpha set to the value given.
func (c Color) Alpha(a float32) Color {
	c.A = a
	return c
}

// RGBA implements image/color.Color; it returns alpha-premultiplied components, clamped to the valid range.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := math32.Clamp(c.A, 0, 1)
	a = uint32(alpha * 0xffff)
	r = uint32(math32.Clamp(c.R, 0, 1) * alpha * 0xffff)
	g = uint32(math32.Clamp(c.G, 0, 1) * alpha * 0xffff)
	b = uint32(math32.Clamp(c.B, 0, 1) * alpha * 0xffff)
	return
}

// ToNRGBA64 converts the Color to a non-premultiplied color.NRGBA64.
func (c Color) ToNRGBA64() color.NRGBA64 {
	return color.NRGBA64{
		uint16(math32.Clamp(c.R, 0, 1) * 0xffff),
		uint16(math32.Clamp(c.G, 0, 1) * 0xffff),
		uint16(math32.Clamp(c.B, 0, 1) * 0xffff),
		uint16(math32.Clamp(c.A, 0, 1) * 0xffff),
	}
}

// ConvertTosRGB converts the R, G, and B components of the Color from linear to sRGB space.
func (c Color) ConvertTosRGB() Color {
	c.R = linearTosRGB(c.R)
	c.G = linearTosRGB(c.G)
	c.B = linearTosRGB(c.B)
	return c
}

func linearTosRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math32.Pow(v, 1/2.4) - 0.055
}

// Transparent generates a Color instance of the provided name.
func Transparent() Color {
	return NewColor(0, 0, 0, 0)
}

// White generates a Color instance of the provided name.
func White() Color {
	return NewColor(1, 1, 1, 1)
}

// Black generates a Color instance of the provided name.
func Black() Color {
	return NewColor(0, 0, 0, 1)
}

// Gray generates a Color instance of the provided name.
func Gray() Color {
	return NewColor(0.5, 0.5, 0.5, 1)
}

// LightGray generates a Color instance of the provided name.
func LightGray() Color {
	return NewColor(0.8, 0.8, 0.8, 1)
}

// DarkGray generates a Color instance of the provided name.
func DarkGray() Color {
	return NewColor(0.2, 0.2, 0.2, 1)
}

// DarkestGray generates a Color instance of the provided name.
func DarkestGray() Color {
	return NewColor(0.05, 0.05, 0.05, 1)
}

// Red generates a Color instance of the provided name.
func Red() Color {
	return NewColor(1, 0, 0, 1)
}

// PaleRed generates a Color instance of the provided name.
func PaleRed() Color {
	return NewColor(0.678, 0.172, 0.384, 1)
}

// Orange generates a Color instance of the provided name.
func Orange() Color {
	return NewColor(1, 0.5, 0, 1)
}

// Yellow generates a Color instance of the provided name.
func Yellow() Color {
	return NewColor(1, 1, 0, 1)
}

// Green generates a Color instance of the provided name.
func Green() Color {
	return NewColor(0, 1, 0, 1)
}

// SkyBlue generates a Color instance of the provided name.
func SkyBlue() Color {
	return NewColor(0, 0.5, 1, 1)
}

// Turquoise generates a Color instance of the provided name.
func Turquoise() Color {
	return NewColor(0, 1, 1, 1)
}

// Blue generates a Color instance of the provided name.
func Blue() Color {
	return NewColor(0, 0, 1, 1)
}

// Pink generates a Color instance of the provided name.
func Pink() Color {
	return NewColor(1, 0, 1, 1)
}

// Purple generates a Color instance of the provided name.
func Purple() Color {
	return NewColor(0.5, 0, 1, 1)
}
