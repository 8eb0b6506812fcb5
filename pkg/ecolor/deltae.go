package ecolor

import(
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/colorchecker/pkg/emath"
)

// DeltaE2000 returns the CIEDE2000 distance between two linear sRGB
// colors. Anything under ~2 is hard to see; a decent camera profile
// should get most checker patches below 3.
func DeltaE2000(a, b emath.Vec3) float64 {
	ca := colorful.LinearRgb(a[0], a[1], a[2])
	cb := colorful.LinearRgb(b[0], b[1], b[2])
	return 100.0 * ca.DistanceCIEDE2000(cb) // colorful keeps L in [0,1], not [0,100]
}
