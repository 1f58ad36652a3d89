// Package checkpoint persists opaque model state blobs keyed by training
// epoch.  The blob contents are owned by the training loop, this package
// only stores bytes and tracks which epoch is current.
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// pointerFile is the name of the file recording the current epoch
const pointerFile = "current.json"

// pointer is the persisted record of the current epoch
type pointer struct {
	Epoch int `json:"epoch"`
}

// Store is a directory backed checkpoint store
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore opens a checkpoint store rooted at dir, creating the directory
// when it does not exist
func NewStore(dir string, log zerolog.Logger) (*Store, error) {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating checkpoint directory")
	}

	return &Store{
		dir: dir,
		log: log,
	}, nil
}

// path returns the blob file name for the given epoch
func (s *Store) path(epoch int) string {
	return filepath.Join(s.dir, "ckpt-"+strconv.Itoa(epoch)+".bin")
}

// Save writes the state blob for the given epoch and moves the current
// epoch pointer to it
func (s *Store) Save(epoch int, state []byte) error {

	file := s.path(epoch)

	if err := os.WriteFile(file, state, 0o644); err != nil {
		return errors.Wrapf(err, "writing checkpoint %s", file)
	}

	data, err := json.Marshal(pointer{Epoch: epoch})

	if err != nil {
		return errors.Wrap(err, "encoding epoch pointer")
	}

	ptr := filepath.Join(s.dir, pointerFile)

	if err := os.WriteFile(ptr, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing epoch pointer %s", ptr)
	}

	s.log.Info().Int("epoch", epoch).Str("file", file).
		Msg("saved checkpoint")

	return nil
}

// CurrentEpoch returns the epoch the pointer file refers to, 0 when no
// checkpoint has been saved yet
func (s *Store) CurrentEpoch() (int, error) {

	data, err := os.ReadFile(filepath.Join(s.dir, pointerFile))

	if os.IsNotExist(err) {
		return 0, nil
	}

	if err != nil {
		return 0, errors.Wrap(err, "reading epoch pointer")
	}

	var p pointer

	if err := json.Unmarshal(data, &p); err != nil {
		return 0, errors.Wrap(err, "decoding epoch pointer")
	}

	return p.Epoch, nil
}

// Load returns the current state blob and its epoch.  When no checkpoint
// exists the returned state is nil and the epoch 0, letting the training
// loop start from scratch
func (s *Store) Load() ([]byte, int, error) {

	epoch, err := s.CurrentEpoch()

	if err != nil {
		return nil, 0, err
	}

	if epoch == 0 {
		return nil, 0, nil
	}

	state, err := s.LoadEpoch(epoch)

	if err != nil {
		return nil, 0, err
	}

	s.log.Info().Int("epoch", epoch).Msg("loaded checkpoint")

	return state, epoch, nil
}

// LoadEpoch returns the state blob saved for a specific epoch
func (s *Store) LoadEpoch(epoch int) ([]byte, error) {

	file := s.path(epoch)

	state, err := os.ReadFile(file)

	if err != nil {
		return nil, errors.Wrapf(err, "reading checkpoint %s", file)
	}

	return state, nil
}
