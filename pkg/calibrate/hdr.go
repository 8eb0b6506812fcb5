package calibrate

import(
	"fmt"
	"os"

	"github.com/mdouchement/hdr/codec/rgbe"

	"github.com/abworrall/colorchecker/pkg/emath"
)

// WriteHDR saves the working buffer as a Radiance RGBE file, so the
// linear data can be poked at in an HDR-aware viewer.
func WriteHDR(img emath.LinearImage, filename string) error {
	if err := img.Validate(); err != nil {
		return stageErr("writehdr", img.Width, img.Height, err)
	}

	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("WriteHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, img)
	}
}
