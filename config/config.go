// Package config reads the post processing parameters from INI files.  The
// parameter set is loaded once into an immutable Params value that callers
// pass explicitly into the pipeline components, there is no process wide
// configuration state.
package config

import (
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// Params holds the typed post processing parameters read from configuration
type Params struct {
	// Threshold is the probability cutoff converting a probability map to
	// a binary foreground mask
	Threshold float64
	// Segmentation enables watershed splitting of touching instances
	Segmentation bool
	// RemoveObjects enables dropping of small connected components before
	// labeling
	RemoveObjects bool
	// MinObjectSize is the pixel area floor used when RemoveObjects is set
	MinObjectSize int
	// SegScale is the multiplier applied to the estimated object radius
	// when deriving the marker separation distance
	SegScale float64
	// SegRatio is the fraction in (0,1] of smallest objects used for the
	// object size estimate
	SegRatio float64
	// EdgeWeightFactor is the subtractive weight applied to the edge
	// probability map during edge aware seeding
	EdgeWeightFactor float64
}

// Load reads the parameter files in order with later files overriding values
// from earlier ones, following the default-then-local override convention.
// Missing files are skipped, but every required key must be present and
// correctly typed in the merged result or an error is returned
func Load(paths ...string) (Params, error) {

	if len(paths) == 0 {
		return Params{}, errors.New("no configuration files given")
	}

	others := make([]interface{}, len(paths)-1)

	for i, p := range paths[1:] {
		others[i] = p
	}

	cfg, err := ini.LooseLoad(paths[0], others...)

	if err != nil {
		return Params{}, errors.Wrap(err, "reading configuration")
	}

	return FromFile(cfg)
}

// FromFile extracts and validates the parameter set from an already parsed
// INI file
func FromFile(cfg *ini.File) (Params, error) {

	var p Params
	var err error

	if p.Threshold, err = floatKey(cfg, "param", "threshold"); err != nil {
		return Params{}, err
	}

	if p.Segmentation, err = boolKey(cfg, "post", "segmentation"); err != nil {
		return Params{}, err
	}

	if p.RemoveObjects, err = boolKey(cfg, "post", "remove_objects"); err != nil {
		return Params{}, err
	}

	if p.MinObjectSize, err = intKey(cfg, "post", "min_object_size"); err != nil {
		return Params{}, err
	}

	if p.SegScale, err = floatKey(cfg, "post", "seg_scale"); err != nil {
		return Params{}, err
	}

	if p.SegRatio, err = floatKey(cfg, "post", "seg_ratio"); err != nil {
		return Params{}, err
	}

	if p.EdgeWeightFactor, err = floatKey(cfg, "post", "edge_weight_factor"); err != nil {
		return Params{}, err
	}

	if p.SegRatio <= 0 || p.SegRatio > 1 {
		return Params{}, errors.Errorf(
			"post.seg_ratio must be in (0,1], got %f", p.SegRatio)
	}

	return p, nil
}

// key fetches a raw key and fails when the section or key is absent
func key(cfg *ini.File, section, name string) (*ini.Key, error) {

	sec := cfg.Section(section)

	if !sec.HasKey(name) {
		return nil, errors.Errorf("missing configuration key %s.%s",
			section, name)
	}

	return sec.Key(name), nil
}

func floatKey(cfg *ini.File, section, name string) (float64, error) {

	k, err := key(cfg, section, name)

	if err != nil {
		return 0, err
	}

	v, err := k.Float64()

	if err != nil {
		return 0, errors.Wrapf(err, "configuration key %s.%s is not a float",
			section, name)
	}

	return v, nil
}

func intKey(cfg *ini.File, section, name string) (int, error) {

	k, err := key(cfg, section, name)

	if err != nil {
		return 0, err
	}

	v, err := k.Int()

	if err != nil {
		return 0, errors.Wrapf(err, "configuration key %s.%s is not an integer",
			section, name)
	}

	return v, nil
}

func boolKey(cfg *ini.File, section, name string) (bool, error) {

	k, err := key(cfg, section, name)

	if err != nil {
		return false, err
	}

	v, err := k.Bool()

	if err != nil {
		return false, errors.Wrapf(err, "configuration key %s.%s is not a boolean",
			section, name)
	}

	return v, nil
}
