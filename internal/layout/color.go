package layout

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const colorStep = 0.7

// Darker scales a hex colour toward black by colorStep^k per channel.
func Darker(hex string, k float64) string {
	return scaleColor(hex, math.Pow(colorStep, k))
}

// Brighter scales a hex colour away from black by (1/colorStep)^k per channel.
func Brighter(hex string, k float64) string {
	return scaleColor(hex, math.Pow(1/colorStep, k))
}

func scaleColor(hex string, factor float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return colorful.Color{R: c.R * factor, G: c.G * factor, B: c.B * factor}.Clamped().Hex()
}
