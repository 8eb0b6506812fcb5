package calibrate

import(
	"errors"
	"fmt"

	"github.com/abworrall/colorchecker/pkg/ecolor"
)

var(
	ErrNoSamples          = errors.New("no samples")
	ErrDegenerateGeometry = errors.New("degenerate checker geometry")
	ErrIllConditioned     = errors.New("measured patches are ill-conditioned")
)

// A StageError says which part of the pipeline failed, and on what size of input.
type StageError struct {
	Stage  string
	Width  int
	Height int
	Err    error
}

func (e *StageError)Error() string {
	return fmt.Sprintf("%s [%dx%d]: %v", e.Stage, e.Width, e.Height, e.Err)
}

func (e *StageError)Unwrap() error { return e.Err }

func stageErr(stage string, w, h int, err error) error {
	return &StageError{Stage: stage, Width: w, Height: h, Err: err}
}

// A PatchError is a failure to measure one checker patch.
type PatchError struct {
	Index int
	Err   error
}

func (e *PatchError)Error() string {
	return fmt.Sprintf("patch %d (col %d, row %d): %v", e.Index, e.Index%ecolor.ChartColumns, e.Index/ecolor.ChartColumns, e.Err)
}

func (e *PatchError)Unwrap() error { return e.Err }
