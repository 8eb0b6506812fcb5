package ecolor

import(
	"math"
	"testing"

	"github.com/abworrall/colorchecker/pkg/emath"
)

func TestReferenceLinear(t *testing.T) {
	ref := ReferenceLinear()

	white := ref[PatchIndex(0, 3)]
	if math.Abs(white[0] - GammaToLinear(243.0/255.0)) > 1e-12 {
		t.Errorf("white patch R = %f", white[0])
	}

	// The bottom row is the gray ramp, and should get darker left to right
	for i:=1; i<ChartColumns; i++ {
		if ref[PatchIndex(i, 3)][1] >= ref[PatchIndex(i-1, 3)][1] {
			t.Errorf("gray ramp not descending at column %d", i)
		}
	}
	if PatchNames[PatchIndex(5, 3)] != "black" || PatchNames[PatchIndex(2, 0)] != "blue sky" {
		t.Errorf("patch names out of order")
	}
}

func TestSRGBToXYZWhite(t *testing.T) {
	// Linear sRGB white should land on the D65 white point
	xyz := SRGBToXYZ.Apply(emath.Vec3{1, 1, 1})
	if math.Abs(xyz[1] - 1.0) > 1e-6 || math.Abs(xyz[0] - 0.95047) > 1e-4 || math.Abs(xyz[2] - 1.08883) > 1e-4 {
		t.Errorf("white maps to %v", xyz)
	}
}

func TestWhiteBalanceFromCamMul(t *testing.T) {
	wb, err := WhiteBalanceFromCamMul([4]float64{2.0, 1.0, 1.5, 0})
	if err != nil || wb != (WhiteBalance{2.0, 1.0, 1.5}) {
		t.Errorf("got %v, %v", wb, err)
	}

	wb, err = WhiteBalanceFromCamMul([4]float64{1024, 512, 768, 512})
	if err != nil || wb != (WhiteBalance{2.0, 1.0, 1.5}) {
		t.Errorf("scaled camMul: got %v, %v", wb, err)
	}

	if _, err := WhiteBalanceFromCamMul([4]float64{0, 1, 1, 0}); err == nil {
		t.Errorf("expected error for zero red multiplier")
	}
}

func TestDeltaE2000(t *testing.T) {
	a := emath.Vec3{0.2, 0.3, 0.4}
	if d := DeltaE2000(a, a); d > 1e-9 {
		t.Errorf("identical colors have dE %f", d)
	}
	if d := DeltaE2000(emath.Vec3{0, 0, 0}, emath.Vec3{1, 1, 1}); d < 50 {
		t.Errorf("black vs white dE only %f", d)
	}
}
