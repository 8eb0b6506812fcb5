package calibrate

import(
	"fmt"
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/colorchecker/pkg/ecolor"
	"github.com/abworrall/colorchecker/pkg/sensor"
)

/* Example config file ...

rotate: 180
bayerorder: RGGB
blacklevel: 255
whitelevel: 4095
exposurestops: 3
checker:
  topleft: [1210, 830]
  bottomright: [2890, 1960]
manufacturer: Sigma
camera: fp
scene: Kitchen window

*/

const(
	SourceCustom    = "custom"    // demosaic the mosaic ourselves
	SourceDeveloped = "developed" // use the decoder's already developed 8-bit image
)

type Config struct {
	Verbosity          int

	// Input handling
	Rotate             int               // 0 or 180
	BayerOrder         sensor.BayerOrder // of the frame as it comes off the decoder, before any rotation
	Source             string

	// Radiometric
	BlackLevel         float64
	WhiteLevel         float64           // 0 means: use the decoder's sensor maximum
	AutoLevels         bool              // estimate levels from the frame's histogram instead
	WhiteBalance       ecolor.WhiteBalance // all zero means: use the camera's as-shot multipliers
	ExposureStops      float64           // for previews only, never for sampling

	// Sampling and solving
	Checker            Geometry
	PatchFraction      float64
	MaxConditionNumber float64

	// Descriptive, used in the export
	Manufacturer       string
	Camera             string
	Scene              string
	Title              string            // overrides the generated title
	BlackPoint         float64
	WhitePoint         float64
	TransferFunction   string
	ExportTemplate     string            // filename of a text/template; empty means the builtin one
}

func NewConfig() Config {
	return Config{
		BayerOrder:         sensor.RGGB,
		Source:             SourceCustom,
		BlackLevel:         255,
		WhiteLevel:         4095,
		ExposureStops:      3,
		PatchFraction:      DefaultPatchFraction,
		MaxConditionNumber: 1e6,
		Scene:              "Unknown Scene",
		BlackPoint:         0,
		WhitePoint:         256,
		TransferFunction:   "Linear",
	}
}

func NewConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, c.Finalize()
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read '%s': %v", filename, err)
	}

	c, err := NewConfigFromYaml(contents)
	if err != nil {
		return c, fmt.Errorf("config parse '%s': %w", filename, err)
	}
	return c, nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Printf("Can't marshal config yaml: %v\n", err)
		return ""
	}
	return string(b)
}

// Finalize does sanity checks, and fills in anything left blank.
func (c *Config)Finalize() error {
	if c.Source == "" {
		c.Source = SourceCustom
	}
	if c.PatchFraction == 0 {
		c.PatchFraction = DefaultPatchFraction
	}

	switch c.Source {
	case SourceCustom, SourceDeveloped:
	default:
		return fmt.Errorf("no source named '%s'", c.Source)
	}

	if c.Rotate != 0 && c.Rotate != 180 {
		return fmt.Errorf("rotate %d: must be 0 or 180", c.Rotate)
	}
	if !c.BayerOrder.Valid() {
		return fmt.Errorf("bayer order %s: %w", c.BayerOrder, sensor.ErrUnknownBayerOrder)
	}
	if c.PatchFraction < 0 || c.PatchFraction > 1 {
		return fmt.Errorf("patch fraction %f: must be in (0,1]", c.PatchFraction)
	}
	if c.WhiteLevel != 0 && c.WhiteLevel <= c.BlackLevel && !c.AutoLevels {
		return fmt.Errorf("white level %.0f not above black level %.0f", c.WhiteLevel, c.BlackLevel)
	}
	if !c.WhiteBalance.IsZero() {
		// Green is the reference channel; configs usually only give r and b
		if c.WhiteBalance.G == 0 {
			c.WhiteBalance.G = 1.0
		}
		if c.WhiteBalance.R <= 0 || c.WhiteBalance.G <= 0 || c.WhiteBalance.B <= 0 {
			return fmt.Errorf("white balance %s: multipliers must be positive", c.WhiteBalance)
		}
	}
	if c.MaxConditionNumber < 0 {
		return fmt.Errorf("max condition number %f: must not be negative", c.MaxConditionNumber)
	}

	return nil
}
