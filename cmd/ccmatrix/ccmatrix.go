package main

import(
	"bytes"
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/abworrall/colorchecker/pkg/calibrate"
	"github.com/abworrall/colorchecker/pkg/sensor"
)

var(
	fVerbosity int
	fConfig string
	fRotate int
	fOrder string
	fSource string
	fTopLeft string
	fBottomRight string
	fStops float64
	fBlack float64
	fWhite float64
	fAutoLevels bool
	fScene string
	fOutput string
	fOverlay string
	fPreview string
	fHDR string
	fReport string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fConfig, "config", "", "yaml config file; flags below override it")
	flag.IntVar(&fRotate, "rotate", 0, "rotate the raw frame before developing (0 or 180)")
	flag.StringVar(&fOrder, "order", "", "bayer order of the raw frame: RGGB, BGGR, GBRG, GRBG")
	flag.StringVar(&fSource, "source", "", "develop the mosaic ourselves ('custom') or use the decoder's ('developed')")
	flag.StringVar(&fTopLeft, "tl", "", "checker top left corner, as x,y")
	flag.StringVar(&fBottomRight, "br", "", "checker bottom right corner, as x,y")
	flag.Float64Var(&fStops, "stops", 3, "exposure boost for previews, in stops")
	flag.Float64Var(&fBlack, "black", 255, "sensor black level")
	flag.Float64Var(&fWhite, "white", 4095, "sensor white level (0: ask the decoder)")
	flag.BoolVar(&fAutoLevels, "autolevels", false, "estimate black/white levels from the histogram")
	flag.StringVar(&fScene, "scene", "", "scene name, for the export title")

	flag.StringVar(&fOutput, "o", "", "name of the export file (default: derived from the title)")
	flag.StringVar(&fOverlay, "overlay", "", "write a PNG preview with the sampled patches outlined")
	flag.StringVar(&fPreview, "preview", "", "write the exposed working image as a PNG")
	flag.StringVar(&fHDR, "hdr", "", "write the linear working image as Radiance HDR")
	flag.StringVar(&fReport, "report", "", "write a yaml report of the fit ('-' for stdout)")
	flag.Parse()

	log.Printf("ccmatrix starting\n")
}

func parseXY(s string) ([2]float64, error) {
	bits := strings.Split(s, ",")
	if len(bits) != 2 {
		return [2]float64{}, fmt.Errorf("'%s': want x,y", s)
	}
	var xy [2]float64
	for i, b := range bits {
		f, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if err != nil {
			return xy, fmt.Errorf("'%s': %v", s, err)
		}
		xy[i] = f
	}
	return xy, nil
}

func buildConfig() (calibrate.Config, error) {
	cfg := calibrate.NewConfig()
	if fConfig != "" {
		c, err := calibrate.LoadConfig(fConfig)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}

	// Only flags given on the command line override the config file
	var err error
	flag.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "v":          cfg.Verbosity = fVerbosity
		case "rotate":     cfg.Rotate = fRotate
		case "source":     cfg.Source = fSource
		case "stops":      cfg.ExposureStops = fStops
		case "black":      cfg.BlackLevel = fBlack
		case "white":      cfg.WhiteLevel = fWhite
		case "autolevels": cfg.AutoLevels = fAutoLevels
		case "scene":      cfg.Scene = fScene
		case "order":      cfg.BayerOrder, err = sensor.ParseBayerOrder(fOrder)
		case "tl":         cfg.Checker.TopLeft, err = parseXY(fTopLeft)
		case "br":         cfg.Checker.BottomRight, err = parseXY(fBottomRight)
		}
	})
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Finalize()
}

func main() {
	if flag.NArg() != 1 {
		log.Fatalf("usage: ccmatrix [flags] rawfile\n")
	}
	filename := flag.Arg(0)

	cfg, err := buildConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	cal := calibrate.NewCalibrator(cfg)
	r, err := cal.Run(ctx, filename, contents)
	if err != nil {
		log.Fatalf("calibration failed: %v\n", err)
	}

	rep := r.Report(cfg.ExposureStops)
	log.Printf("%s", rep)

	renderer, err := cal.Renderer()
	if err != nil {
		log.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.WriteExport(&buf, renderer); err != nil {
		log.Fatal(err)
	}
	outFilename := fOutput
	if outFilename == "" {
		outFilename = r.Filename(".flspace")
	}
	if err := ioutil.WriteFile(outFilename, buf.Bytes(), 0644); err != nil {
		log.Fatal(err)
	}
	log.Printf("export written '%s'\n", outFilename)

	if fOverlay != "" || fPreview != "" {
		preview, err := calibrate.Preview(ctx, cal.Encoder, r.LinearImage, cfg.ExposureStops)
		if err != nil {
			log.Fatal(err)
		}
		if fPreview != "" {
			if err := calibrate.WritePNG(preview, fPreview); err != nil {
				log.Fatal(err)
			}
			log.Printf("preview written '%s'\n", fPreview)
		}
		if fOverlay != "" {
			if err := calibrate.WriteOverlay(preview, cfg.Checker, r.Patches, cfg.ExposureStops, fOverlay); err != nil {
				log.Fatal(err)
			}
			log.Printf("overlay written '%s'\n", fOverlay)
		}
	}

	if fHDR != "" {
		if err := calibrate.WriteHDR(r.LinearImage, fHDR); err != nil {
			log.Fatal(err)
		}
		log.Printf("HDR written '%s'\n", fHDR)
	}

	switch fReport {
	case "":
	case "-":
		fmt.Fprint(os.Stdout, rep.AsYaml())
	default:
		if err := ioutil.WriteFile(fReport, []byte(rep.AsYaml()), 0644); err != nil {
			log.Fatal(err)
		}
	}
}
