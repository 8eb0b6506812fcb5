package sensor

import(
	"fmt"

	"github.com/codahale/hdrhistogram"
)

// Levels are the sensor counts that map to black and to white.
type Levels struct {
	Black float64
	White float64
}

func (l Levels)String() string { return fmt.Sprintf("levels[%.0f, %.0f]", l.Black, l.White) }

// LevelStats summarizes the distribution of raw sample values.
type LevelStats struct {
	Min, Max     int64
	Mean         float64
	Low, High    int64   // values at the requested percentiles
	ClippedCount int64   // samples at or above the white level asked about
	Total        int64
}

func (ls LevelStats)ClippedFraction() float64 {
	if ls.Total == 0 {
		return 0
	}
	return float64(ls.ClippedCount) / float64(ls.Total)
}

// MeasureLevels builds a histogram of every sample in the frame, and
// reads off the values at the lowPct and highPct percentiles (0-100).
// Samples at or above white count as clipped; a white of zero means it
// isn't known, and nothing is counted.
func MeasureLevels(f RawFrame, lowPct, highPct, white float64) (LevelStats, error) {
	if len(f.Samples) == 0 {
		return LevelStats{}, fmt.Errorf("%s: no samples to measure", f)
	}

	h := hdrhistogram.New(0, 0xFFFF, 3)
	for _, v := range f.Samples {
		if err := h.RecordValue(int64(v)); err != nil {
			return LevelStats{}, fmt.Errorf("%s: histogram: %v", f, err)
		}
	}

	ls := LevelStats{
		Min:   h.Min(),
		Max:   h.Max(),
		Mean:  h.Mean(),
		Low:   h.ValueAtQuantile(lowPct),
		High:  h.ValueAtQuantile(highPct),
		Total: h.TotalCount(),
	}

	// The histogram is only accurate to its precision, so count the
	// clipped samples exactly
	if white > 0 {
		for _, v := range f.Samples {
			if float64(v) >= white { ls.ClippedCount++ }
		}
	}

	return ls, nil
}

// EstimateLevels guesses black and white levels from the sample
// distribution, for when the decoder couldn't say. It assumes the shot
// has some near-black and some clipped photosites (the checker's black
// patch and a blown highlight will do).
func EstimateLevels(f RawFrame) (Levels, error) {
	ls, err := MeasureLevels(f, 0.1, 99.99, 0)
	if err != nil {
		return Levels{}, err
	}
	if ls.High <= ls.Low {
		return Levels{}, fmt.Errorf("%s: flat histogram [%d,%d], can't estimate levels", f, ls.Low, ls.High)
	}
	return Levels{Black: float64(ls.Low), White: float64(ls.High)}, nil
}
