package storageprovider

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/getsentry/perfmetrics/internal/storageutil"
)

// Local implements storageutil.ObjectHandler on top of a directory. Object
// names use forward slashes and map to nested paths below Dir.
type Local struct {
	Dir string
}

func (l *Local) path(name string) string {
	return filepath.Join(l.Dir, filepath.FromSlash(name))
}

// Put writes a file to the storage provider with name being the path.
func (l *Local) Put(_ context.Context, name string) (io.WriteCloser, error) {
	p := l.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, err
	}
	return os.Create(p)
}

// Get reads a file from the storage provider with name being the path.
// If a key was not found, it will return ErrObjectNotFound.
func (l *Local) Get(_ context.Context, name string) (storageutil.ReadSizeCloser, error) {
	f, err := os.Open(l.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storageutil.ErrObjectNotFound
		}
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &localReader{File: f, size: st.Size()}, nil
}

type localReader struct {
	*os.File
	size int64
}

func (r *localReader) Size() int64 {
	return r.size
}
