package calibrate

import(
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/colorchecker/pkg/ecolor"
	"github.com/abworrall/colorchecker/pkg/emath"
)

// A Solution is everything derived from one least-squares fit. Rows of
// Measured / Reference / Calculated are patches; colors are row
// vectors, so Calculated = Measured · Correction.
type Solution struct {
	Measured       *mat.Dense // N x 3, linear camera RGB
	Reference      *mat.Dense // N x 3, linear reference RGB
	Calculated     *mat.Dense // N x 3, Measured · Correction

	Correction     emath.Mat3 // least-squares fit, camera RGB -> reference RGB
	ToWorkingSpace emath.Mat3 // Correction · basis
	Normalized     emath.Mat3 // ToWorkingSpace with each column scaled to sum to 1
	Export         emath.Mat3 // Normalized, transposed

	SingularValues []float64  // of Measured, descending
	Condition      float64    // largest / smallest singular value
}

// Solve fits the 3x3 matrix that best maps measured onto reference, via
// the Moore-Penrose pseudo-inverse of measured. It refuses to go on if
// measured is rank deficient, or its condition number exceeds maxCond
// (0 disables that check); a box drawn over a plain gray wall will get
// caught here. The fit is then chained with basis and normalized for
// export.
func Solve(measured, reference []emath.Vec3, basis emath.Mat3, maxCond float64) (Solution, error) {
	if len(measured) != len(reference) {
		return Solution{}, fmt.Errorf("solve: %d measured vs %d reference patches: %w",
			len(measured), len(reference), emath.ErrLengthMismatch)
	}
	if len(measured) < 3 {
		return Solution{}, fmt.Errorf("solve: need at least 3 patches, have %d", len(measured))
	}

	s := Solution{
		Measured:  vecsToDense(measured),
		Reference: vecsToDense(reference),
	}

	pinv, err := s.pseudoInverse(maxCond)
	if err != nil {
		return s, err
	}

	var corr mat.Dense
	corr.Mul(pinv, s.Reference)
	s.Correction = denseToMat3(&corr)

	s.Calculated = mat.NewDense(len(measured), 3, nil)
	s.Calculated.Mul(s.Measured, &corr)

	s.ToWorkingSpace = s.Correction.Mult(basis)

	sums := s.ToWorkingSpace.ColumnSums()
	for col:=0; col<3; col++ {
		if math.Abs(sums[col]) < 1e-12 {
			return s, fmt.Errorf("solve: working space column %d sums to %g: %w", col, sums[col], ErrIllConditioned)
		}
	}
	s.Normalized = s.ToWorkingSpace.NormalizeColumns()
	s.Export = s.Normalized.Transpose()

	return s, nil
}

// SolveChart fits measured patches against the standard checker chart,
// mapping into XYZ.
func SolveChart(patches []PatchEstimate, maxCond float64) (Solution, error) {
	measured := make([]emath.Vec3, len(patches))
	for i, p := range patches {
		measured[i] = p.RGB
	}
	ref := ecolor.ReferenceLinear()
	return Solve(measured, ref[:], ecolor.SRGBToXYZ, maxCond)
}

// pseudoInverse computes V·Σ⁺·Uᵀ from a thin SVD of Measured.
func (s *Solution)pseudoInverse(maxCond float64) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(s.Measured, mat.SVDThin); !ok {
		return nil, fmt.Errorf("solve: SVD failed to converge: %w", ErrIllConditioned)
	}

	s.SingularValues = svd.Values(nil)
	smax, smin := s.SingularValues[0], s.SingularValues[len(s.SingularValues)-1]
	if smin <= smax * 1e-15 {
		s.Condition = math.Inf(1)
		return nil, fmt.Errorf("solve: measured matrix is rank deficient (singular values %v): %w",
			s.SingularValues, ErrIllConditioned)
	}
	s.Condition = smax / smin
	if maxCond > 0 && s.Condition > maxCond {
		return nil, fmt.Errorf("solve: condition number %.3g exceeds %.3g: %w", s.Condition, maxCond, ErrIllConditioned)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	inv := make([]float64, len(s.SingularValues))
	for i, sv := range s.SingularValues {
		inv[i] = 1.0 / sv
	}

	var vs, pinv mat.Dense
	vs.Mul(&v, mat.NewDiagDense(len(inv), inv))
	pinv.Mul(&vs, u.T())
	return &pinv, nil
}

// Residuals returns, per patch, the CIEDE2000 distance between the
// fitted color and the reference.
func (s Solution)Residuals() []float64 {
	n, _ := s.Calculated.Dims()
	out := make([]float64, n)
	for i:=0; i<n; i++ {
		out[i] = ecolor.DeltaE2000(denseRow(s.Calculated, i), denseRow(s.Reference, i))
	}
	return out
}

// RMSError is the root mean square difference between the fitted and
// reference colors, in linear units.
func (s Solution)RMSError() float64 {
	var diff mat.Dense
	diff.Sub(s.Calculated, s.Reference)
	n, c := diff.Dims()
	return mat.Norm(&diff, 2) / math.Sqrt(float64(n*c))
}

func vecsToDense(vs []emath.Vec3) *mat.Dense {
	m := mat.NewDense(len(vs), 3, nil)
	for i, v := range vs {
		m.SetRow(i, v[:])
	}
	return m
}

func denseToMat3(d *mat.Dense) emath.Mat3 {
	var m emath.Mat3
	for r:=0; r<3; r++ {
		for c:=0; c<3; c++ {
			m[3*r+c] = d.At(r, c)
		}
	}
	return m
}

func denseRow(d *mat.Dense, i int) emath.Vec3 {
	return emath.Vec3{d.At(i, 0), d.At(i, 1), d.At(i, 2)}
}
