package state

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ptyonic/mcstatus/internal/utils"
	"github.com/ptyonic/mcstatus/option"
)

// settings are shared by every backend.
type settings struct {
	log *zap.Logger
}

// StoreOption configures a Store backend.
type StoreOption = option.Option[settings]

// WithLogger makes the store report recovered load failures at debug level.
func WithLogger(log *zap.Logger) StoreOption {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

func newSettings(opts []StoreOption) settings {
	s := settings{log: zap.NewNop()}
	option.Apply(&s, opts...)
	return s
}

// FileStore keeps the record as a small JSON document.
type FileStore struct {
	path string
	log  *zap.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a JSON store at path. Nothing is touched until Load or Save.
func NewFileStore(path string, opts ...StoreOption) *FileStore {
	s := newSettings(opts)
	return &FileStore{path: path, log: s.log}
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

// Read decodes the file and reports why it could not.
func (f *FileStore) Read() (State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return State{}, errors.Wrapf(err, "read state file %s", f.path)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, errors.Wrapf(err, "decode state file %s", f.path)
	}

	return s, nil
}

// Load implements Store.
func (f *FileStore) Load(_ context.Context) State {
	s, err := f.Read()
	if err != nil {
		f.log.Debug("state_load_fallback", zap.String("path", f.path), zap.Error(err))
		return State{}
	}
	return s
}

// Save implements Store.
func (f *FileStore) Save(_ context.Context, s State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode state")
	}

	if err := utils.WriteFileAtomic(f.path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "save state file %s", f.path)
	}

	return nil
}
