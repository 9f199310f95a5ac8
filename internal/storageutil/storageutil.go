package storageutil

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/pierrec/lz4/v4"
)

// DefaultTimeout bounds a single object write or read.
const DefaultTimeout = 5 * time.Second

// ErrObjectNotFound indicates an object was not found.
var ErrObjectNotFound = errors.New("object not found")

type ReadSizeCloser interface {
	io.Reader
	io.Closer
	Size() int64
}

// ObjectHandler provides common interface for multiple storage providers.
type ObjectHandler interface {
	// Put writes a file to the storage provider with name being the path.
	Put(ctx context.Context, name string) (io.WriteCloser, error)
	// Get reads a file from the storage provider with name being the path.
	// If a key was not found, it will return ErrObjectNotFound.
	Get(ctx context.Context, name string) (ReadSizeCloser, error)
}

// WriteObject stores whatever write produces under objectName. When write
// fails the context handed to the provider is cancelled before the object is
// closed so providers that support it discard the partial object.
func WriteObject(ctx context.Context, b ObjectHandler, objectName string, write func(io.Writer) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	ow, err := b.Put(ctx, objectName)
	if err != nil {
		return err
	}
	if err := write(ow); err != nil {
		cancel()
		_ = ow.Close()
		return err
	}
	return ow.Close()
}

// CompressedWrite encodes d as JSON, compresses it with lz4 and stores it
// under objectName.
func CompressedWrite(ctx context.Context, b ObjectHandler, objectName string, d interface{}) error {
	return WriteObject(ctx, b, objectName, func(w io.Writer) error {
		zw := lz4.NewWriter(w)
		_ = zw.Apply(lz4.CompressionLevelOption(lz4.Level9))
		err := json.NewEncoder(zw).Encode(d)
		if err != nil {
			return err
		}
		return zw.Close()
	})
}

// ReadObject returns the content of objectName.
func ReadObject(ctx context.Context, b ObjectHandler, objectName string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	or, err := b.Get(ctx, objectName)
	if err != nil {
		return nil, err
	}
	defer or.Close()
	return io.ReadAll(or)
}

// UnmarshalCompressed reads lz4 compressed JSON data and unmarshals it.
func UnmarshalCompressed(ctx context.Context, b ObjectHandler, objectName string, d interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	or, err := b.Get(ctx, objectName)
	if err != nil {
		return err
	}
	defer or.Close()
	zr := lz4.NewReader(or)
	err = json.NewDecoder(zr).Decode(d)
	if err != nil {
		return err
	}
	return nil
}
