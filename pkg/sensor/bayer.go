package sensor

import(
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownBayerOrder = errors.New("unknown bayer order")

// Color channel indices, as used in LinearImage pixels
const(
	ChanR = 0
	ChanG = 1
	ChanB = 2
)

// A BayerOrder names which color filter sits over each photosite of a
// 2x2 tile. Only the four standard phases are supported.
type BayerOrder int

const(
	RGGB BayerOrder = iota
	BGGR
	GBRG
	GRBG
)

// Channel per tile position: top-left, top-right, bottom-left, bottom-right
var bayerTables = map[BayerOrder][4]int{
	RGGB: {ChanR, ChanG, ChanG, ChanB},
	BGGR: {ChanB, ChanG, ChanG, ChanR},
	GBRG: {ChanG, ChanB, ChanR, ChanG},
	GRBG: {ChanG, ChanR, ChanB, ChanG},
}

var bayerNames = map[BayerOrder]string{
	RGGB: "RGGB",
	BGGR: "BGGR",
	GBRG: "GBRG",
	GRBG: "GRBG",
}

func ParseBayerOrder(s string) (BayerOrder, error) {
	for o, name := range bayerNames {
		if strings.EqualFold(s, name) {
			return o, nil
		}
	}
	return 0, fmt.Errorf("bayer order '%s': %w", s, ErrUnknownBayerOrder)
}

func (o BayerOrder)String() string {
	if name, exists := bayerNames[o]; exists {
		return name
	}
	return fmt.Sprintf("BayerOrder(%d)", int(o))
}

func (o BayerOrder)Valid() bool { _, exists := bayerTables[o]; return exists }

// Table returns the channel at each tile position.
func (o BayerOrder)Table() [4]int { return bayerTables[o] }

// ChannelAt returns the channel recorded by the photosite at (x,y).
func (o BayerOrder)ChannelAt(x, y int) int {
	return bayerTables[o][2*(y%2) + (x%2)]
}

// Rotate180 gives the order you see after turning the frame upside
// down: the tile is read back to front, so R and B trade places and so
// do the two greens.
func (o BayerOrder)Rotate180() BayerOrder {
	switch o {
	case RGGB: return BGGR
	case BGGR: return RGGB
	case GBRG: return GRBG
	case GRBG: return GBRG
	}
	return o
}

// MarshalYAML / UnmarshalYAML let configs say `bayerorder: RGGB`
func (o BayerOrder)MarshalYAML() (interface{}, error) { return o.String(), nil }

func (o *BayerOrder)UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseBayerOrder(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
