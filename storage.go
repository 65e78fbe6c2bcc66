package photostream

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// PhotoStorage persists uploaded image bytes and returns the URL the
// photo record stores
type PhotoStorage interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
	Remove(ctx context.Context, url string) error
}

// DiskStorage writes uploads under a base directory. Files get uuid
// names; the original name only contributes its extension.
type DiskStorage struct {
	baseDir   string
	publicURL string
}

var _ PhotoStorage = (*DiskStorage)(nil)

// NewDiskStorage creates the base directory if needed. publicURL is
// the prefix served back to clients, e.g. "/static/photos".
func NewDiskStorage(baseDir, publicURL string) (*DiskStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create photo storage directory")
	}

	return &DiskStorage{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (d *DiskStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", goerrors.New("photo payload is empty", goerrors.CategoryValidation)
	}

	name := uuid.NewString()
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		name += ext
	}

	if err := os.WriteFile(filepath.Join(d.baseDir, name), data, 0o644); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write photo file")
	}

	return d.publicURL + "/" + name, nil
}

func (d *DiskStorage) Remove(ctx context.Context, url string) error {
	name := filepath.Base(url)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil
	}

	if err := os.Remove(filepath.Join(d.baseDir, name)); err != nil && !os.IsNotExist(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove photo file")
	}

	return nil
}
