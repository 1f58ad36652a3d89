package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/swdee/go-nucleiseg"
	"github.com/swdee/go-nucleiseg/config"
	"github.com/swdee/go-nucleiseg/postprocess"
	"github.com/swdee/go-nucleiseg/render"
	"gocv.io/x/gocv"
)

func main() {

	// read in cli flags
	confFiles := flag.String("c", "config_default.ini,config.ini",
		"Comma separated configuration files, later files override earlier ones")
	probFile := flag.String("i", "../data/prob.png",
		"Probability map image file to extract instances from")
	edgeFile := flag.String("e", "",
		"Optional edge probability map for edge aware splitting")
	imageID := flag.String("id", "",
		"Image identifier used in the submission rows, defaults to the input file name")
	outFile := flag.String("o", "./submission.csv", "Submission CSV file to write")
	overlayFile := flag.String("overlay", "",
		"Optional image file to render the instance overlay to")
	seed := flag.Int64("seed", 0,
		"Random seed for watershed jitter, 0 draws from the clock")

	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	params, err := config.Load(strings.Split(*confFiles, ",")...)

	if err != nil {
		log.Fatal().Err(err).Msg("error loading configuration")
	}

	if *imageID == "" {
		base := filepath.Base(*probFile)
		*imageID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	prob, err := loadMap(*probFile)

	if err != nil {
		log.Fatal().Err(err).Str("file", *probFile).
			Msg("error reading probability map")
	}

	log.Info().Str("image", *imageID).
		Int("width", prob.Width).Int("height", prob.Height).
		Float64("threshold", params.Threshold).
		Msg("extracting instances")

	proc := postprocess.NewProcessor(params)

	if *seed != 0 {
		proc.UseSplitter(postprocess.NewSplitterWithSeed(*seed))
	}

	var labels *nucleiseg.LabelMap

	if *edgeFile != "" {

		// an explicit edge channel overrides size based splitting
		edge, err := loadMap(*edgeFile)

		if err != nil {
			log.Fatal().Err(err).Str("file", *edgeFile).
				Msg("error reading edge map")
		}

		splitter := postprocess.NewSplitter()

		labels, err = splitter.SplitByEdge(prob, edge, params.Threshold,
			params.EdgeWeightFactor)

		if err != nil {
			log.Fatal().Err(err).Msg("edge aware split failed")
		}

	} else {

		labels, err = proc.Label(prob)

		if err != nil {
			log.Fatal().Err(err).Msg("instance labeling failed")
		}
	}

	log.Info().Int("instances", len(labels.Labels())).Msg("labeling complete")

	out, err := os.Create(*outFile)

	if err != nil {
		log.Fatal().Err(err).Msg("error creating submission file")
	}

	defer out.Close()

	if _, err := out.WriteString("ImageId,EncodedPixels\n"); err != nil {
		log.Fatal().Err(err).Msg("error writing submission header")
	}

	instances := func(yield func(postprocess.RLE) bool) {
		for _, label := range labels.Labels() {
			if !yield(postprocess.EncodeRLE(labels.MaskOf(label))) {
				return
			}
		}
	}

	if err := postprocess.WriteSubmission(out, *imageID, instances); err != nil {
		log.Fatal().Err(err).Msg("error writing submission")
	}

	log.Info().Str("file", *outFile).Msg("submission written")

	if *overlayFile != "" {
		writeOverlay(log, *overlayFile, labels)
	}
}

// loadMap reads a probability map from disk, using the pure Go TIFF decoder
// for tiff files and OpenCV for everything else
func loadMap(file string) (*nucleiseg.FloatMap, error) {

	ext := strings.ToLower(filepath.Ext(file))

	if ext == ".tif" || ext == ".tiff" {
		return nucleiseg.LoadFloatMapTIFF(file)
	}

	return nucleiseg.LoadFloatMap(file)
}

// writeOverlay renders the labeled instances over a black canvas and saves
// the result
func writeOverlay(log zerolog.Logger, file string, labels *nucleiseg.LabelMap) {

	canvas := gocv.NewMatWithSize(labels.Height, labels.Width, gocv.MatTypeCV8UC3)
	defer canvas.Close()

	if err := render.Overlay(&canvas, labels, 1.0); err != nil {
		log.Fatal().Err(err).Msg("error rendering overlay")
	}

	render.DrawInstanceIDs(&canvas, labels)

	if ok := gocv.IMWrite(file, canvas); !ok {
		log.Fatal().Str("file", file).Msg("failed to save overlay image")
	}

	log.Info().Str("file", file).Msg("overlay written")
}
