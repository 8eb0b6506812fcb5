package ecolor

import "github.com/abworrall/colorchecker/pkg/emath"

// The classic 24 patch checker chart: 6 columns, 4 rows.
const(
	ChartColumns = 6
	ChartRows    = 4
	ChartPatches = ChartColumns * ChartRows
)

var(
	// ReferenceChart holds the published sRGB (8-bit, gamma encoded)
	// values of each patch, row-major starting at the top left (dark
	// skin) with the chart held so the gray ramp is the bottom row.
	ReferenceChart = [ChartPatches][3]uint8{
		{115,  82,  68}, {194, 150, 130}, { 98, 122, 157}, { 87, 108,  67}, {133, 128, 177}, {103, 189, 170},
		{214, 126,  44}, { 80,  91, 166}, {193,  90,  99}, { 94,  60, 108}, {157, 188,  64}, {224, 163,  46},
		{ 56,  61, 150}, { 70, 148,  73}, {175,  54,  60}, {231, 199,  31}, {187,  86, 149}, {  8, 133, 161},
		{243, 243, 242}, {200, 200, 200}, {160, 160, 160}, {122, 122, 121}, { 85,  85,  85}, { 52,  52,  52},
	}

	PatchNames = [ChartPatches]string{
		"dark skin", "light skin", "blue sky", "foliage", "blue flower", "bluish green",
		"orange", "purplish blue", "moderate red", "purple", "yellow green", "orange yellow",
		"blue", "green", "red", "yellow", "magenta", "cyan",
		"white", "neutral 8", "neutral 6.5", "neutral 5", "neutral 3.5", "black",
	}

	// Linear sRGB(D65) to XYZ(D65). The solver chains this after the
	// fitted correction, so the exported matrix lands in XYZ.
	// http://www.brucelindbloom.com/index.html?Eqn_RGB_XYZ_Matrix.html
	SRGBToXYZ = emath.Mat3{
		0.4124564, 0.3575761, 0.1804375,
		0.2126729, 0.7151522, 0.0721750,
		0.0193339, 0.1191920, 0.9503041,
	}
)

// PatchIndex gives the row-major index of the patch at column i, row j.
func PatchIndex(i, j int) int { return j*ChartColumns + i }

// ReferenceLinear returns the reference chart in linear light.
func ReferenceLinear() [ChartPatches]emath.Vec3 {
	var out [ChartPatches]emath.Vec3
	for k, rgb := range ReferenceChart {
		out[k] = emath.Vec3{FromSRGB8(rgb[0]), FromSRGB8(rgb[1]), FromSRGB8(rgb[2])}
	}
	return out
}
