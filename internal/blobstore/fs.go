package blobstore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// FSStore writes artifacts to a local directory and serves them under a
// configured base URL. Meant for development and tests.
type FSStore struct {
	fs      afero.Fs
	dir     string
	baseURL string
}

func NewFSStore(fs afero.Fs, dir, baseURL string) *FSStore {
	return &FSStore{
		fs:      fs,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *FSStore) Upload(_ context.Context, name string, data []byte, _ string) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	target := path.Join(s.dir, name)
	exists, err := afero.Exists(s.fs, target)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", name, err)
	}
	if exists {
		return "", fmt.Errorf("artifact %s already exists", name)
	}

	if err := afero.WriteFile(s.fs, target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.baseURL + "/" + name, nil
}
