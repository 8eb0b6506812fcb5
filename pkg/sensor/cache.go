package sensor

import(
	"fmt"
	"sync"
)

// A RotationCache remembers rotated copies of frames, so that
// re-running a calibration (e.g. after moving the checker box) doesn't
// redo the rotation. Entries are keyed by the identity of the source
// frame and the rotation asked for; the cache never looks at sample
// contents, so don't mutate a frame after handing it over.
type RotationCache struct {
	mu      sync.Mutex
	entries map[rotationKey]RawFrame
}

type rotationKey struct {
	src    *RawFrame
	degrees int
}

func NewRotationCache() *RotationCache {
	return &RotationCache{entries: map[rotationKey]RawFrame{}}
}

// Oriented returns src rotated by degrees, which must be 0 or 180.
func (rc *RotationCache)Oriented(src *RawFrame, degrees int) (RawFrame, error) {
	switch degrees {
	case 0:
		return *src, nil
	case 180:
	default:
		return RawFrame{}, fmt.Errorf("rotate %d: only 0 and 180 are supported", degrees)
	}

	key := rotationKey{src, degrees}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rotated, exists := rc.entries[key]; exists {
		return rotated, nil
	}
	rotated := Rotate180(*src)
	rc.entries[key] = rotated
	return rotated, nil
}

func (rc *RotationCache)Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}
