package ecolor

import "math"

// The sRGB transfer function, in both directions.
// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"

// LinearToGamma takes a linear light value in [0,1] and applies the
// sRGB gamma expansion.
func LinearToGamma(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

// GammaToLinear undoes LinearToGamma.
func GammaToLinear(f float64) float64 {
	if f <= 0.04045 {
		return f / 12.92
	}
	return math.Pow((f + 0.055) / 1.055, 2.4)
}

// ToSRGB8 gamma encodes a single linear value and quantizes it into a byte.
func ToSRGB8(f float64) uint8 {
	g := LinearToGamma(f)
	if !(g > 0) { // also catches NaN
		return 0
	}
	if g >= 1 {
		return 255
	}
	return uint8(math.Round(g * 255.0))
}

// FromSRGB8 maps a gamma encoded byte back to linear light.
func FromSRGB8(b uint8) float64 {
	return GammaToLinear(float64(b) / 255.0)
}

// LinearToSRGB8 is the bulk form of ToSRGB8. Each element is
// independent, see ParallelEncoder for the fanned-out version.
func LinearToSRGB8(in []float64) []uint8 {
	out := make([]uint8, len(in))
	for i, v := range in {
		out[i] = ToSRGB8(v)
	}
	return out
}

// SRGB8ToLinear is the bulk form of FromSRGB8. It uses a lookup table,
// since there are only 256 possible inputs.
func SRGB8ToLinear(in []uint8) []float64 {
	var lut [256]float64
	for i := range lut {
		lut[i] = FromSRGB8(uint8(i))
	}

	out := make([]float64, len(in))
	for i, b := range in {
		out[i] = lut[b]
	}
	return out
}
