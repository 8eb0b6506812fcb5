package ecolor

import(
	"fmt"

	"github.com/abworrall/colorchecker/pkg/emath"
)

// WhiteBalance holds per-channel multipliers, applied to camera
// native RGB to make a neutral surface come out neutral. Green is
// conventionally 1.0.
type WhiteBalance struct {
	R, G, B float64
}

func NeutralWhiteBalance() WhiteBalance { return WhiteBalance{1, 1, 1} }

func (wb WhiteBalance)IsZero() bool { return wb == WhiteBalance{} }

func (wb WhiteBalance)String() string {
	return fmt.Sprintf("wb[%.4f, %.4f, %.4f]", wb.R, wb.G, wb.B)
}

func (wb WhiteBalance)Vec3() emath.Vec3 { return emath.Vec3{wb.R, wb.G, wb.B} }

// WhiteBalanceFromCamMul builds coefficients from a decoder's camMul
// metadata, which is [r, g, b, g2]. Only the red and blue entries are
// used; green is pinned to 1.0. Some decoders report camMul scaled so
// that green isn't 1, so r and b are divided through by it.
func WhiteBalanceFromCamMul(camMul [4]float64) (WhiteBalance, error) {
	g := camMul[1]
	if g == 0 {
		g = 1.0
	}
	wb := WhiteBalance{R: camMul[0] / g, G: 1.0, B: camMul[2] / g}
	if wb.R <= 0 || wb.B <= 0 {
		return WhiteBalance{}, fmt.Errorf("camMul %v: non-positive red/blue multiplier", camMul)
	}
	return wb, nil
}
