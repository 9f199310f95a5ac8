package storageprovider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/fsouza/fake-gcs-server/fakestorage"
	"github.com/google/uuid"
	"github.com/phayes/freeport"
	"gocloud.dev/blob/memblob"

	"github.com/getsentry/perfmetrics/internal/storageutil"
)

const bucketName = "reports"

var gcsServer *fakestorage.Server

func TestMain(m *testing.M) {
	port, err := freeport.GetFreePort()
	if err != nil {
		log.Fatalf("no free port found: %v", err)
	}
	publicHost := fmt.Sprintf("127.0.0.1:%d", port)
	gcsServer, err = fakestorage.NewServerWithOptions(fakestorage.Options{
		PublicHost: publicHost,
		Host:       "127.0.0.1",
		Port:       uint16(port),
		Scheme:     "http",
	})
	if err != nil {
		log.Fatalf("couldn't set up gcs server: %v", err)
	}
	os.Setenv("STORAGE_EMULATOR_HOST", publicHost)
	gcsServer.CreateBucketWithOpts(fakestorage.CreateBucketOpts{Name: bucketName})

	code := m.Run()
	gcsServer.Stop()
	os.Exit(code)
}

type provider struct {
	name    string
	handler storageutil.ObjectHandler
}

func providers(t *testing.T) []provider {
	t.Helper()
	ctx := context.Background()

	client, err := storage.NewClient(ctx)
	if err != nil {
		t.Fatalf("we should be able to create a client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	db, err := OpenBadger("")
	if err != nil {
		t.Fatalf("we should be able to open an in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	return []provider{
		{name: "Local", handler: &Local{Dir: t.TempDir()}},
		{name: "Blob", handler: &Blob{Bucket: bucket}},
		{name: "Gcs", handler: &Gcs{BucketHandle: client.Bucket(bucketName)}},
		{name: "Badger", handler: db},
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	content := []byte("Name;Samples;Total;Self;Min;Max;Avg\n")

	for _, p := range providers(t) {
		t.Run(p.name, func(t *testing.T) {
			name := uuid.New().String() + "/CategoryReport.txt"
			w, err := p.handler.Put(ctx, name)
			if err != nil {
				t.Fatalf("we should be able to open a writer: %v", err)
			}
			if _, err := w.Write(content); err != nil {
				t.Fatalf("we should be able to write: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("we should be able to close the writer: %v", err)
			}

			r, err := p.handler.Get(ctx, name)
			if err != nil {
				t.Fatalf("we should be able to read the object: %v", err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("we should be able to read the content: %v", err)
			}
			if string(got) != string(content) {
				t.Fatalf("got %q, want %q", got, content)
			}
			if r.Size() != int64(len(content)) {
				t.Fatalf("got size %d, want %d", r.Size(), len(content))
			}
		})
	}
}

func TestGetMissingObject(t *testing.T) {
	ctx := context.Background()
	for _, p := range providers(t) {
		t.Run(p.name, func(t *testing.T) {
			_, err := p.handler.Get(ctx, uuid.New().String())
			if !errors.Is(err, storageutil.ErrObjectNotFound) {
				t.Fatalf("expected ErrObjectNotFound, got %v", err)
			}
		})
	}
}

func TestLocalNestedPath(t *testing.T) {
	dir := t.TempDir()
	l := &Local{Dir: dir}
	w, err := l.Put(context.Background(), "session/TreeReport.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = w.Close()
	if _, err := os.Stat(filepath.Join(dir, "session", "TreeReport.xml")); err != nil {
		t.Fatalf("nested object should be created on disk: %v", err)
	}
}

func TestOpenBlob(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := OpenBlob(ctx, "file://"+filepath.ToSlash(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer b.Close()
	w, err := b.Put(ctx, "IDReport.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = w.Write([]byte("x"))
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "IDReport.txt")); err != nil {
		t.Fatalf("object should be written below the bucket dir: %v", err)
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "a/TreeReport.xml", want: "application/xml"},
		{name: "report.json.lz4", want: "application/x-lz4"},
		{name: "IDReport.txt", want: "text/plain; charset=utf-8"},
		{name: "blob", want: "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentType(tt.name); got != tt.want {
				t.Fatalf("contentType(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
