package download_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eoforge/sathub/internal/download"
	"github.com/eoforge/sathub/internal/storage"
)

func TestSinkUpload(t *testing.T) {
	ctx := context.Background()
	store := storage.NewLocalStore(t.TempDir())
	sink := download.NewSink(store, "scenes", "archives")

	src := filepath.Join(t.TempDir(), "scene.zip")
	if err := os.WriteFile(src, []byte("zipbytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	runID := download.NewRunID()
	if !strings.HasPrefix(runID, "run-") {
		t.Errorf("runID = %q", runID)
	}

	key, err := sink.Upload(ctx, runID, src)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	want := "archives/" + runID + "/scene.zip"
	if key != want {
		t.Errorf("key = %q, want %q", key, want)
	}

	data, err := store.GetObject(ctx, "scenes", key)
	if err != nil || string(data) != "zipbytes" {
		t.Fatalf("stored object = %q, %v", data, err)
	}

	// Same size means the second upload is a no-op.
	again, err := sink.Upload(ctx, runID, src)
	if err != nil {
		t.Fatalf("second Upload failed: %v", err)
	}
	if again != key {
		t.Errorf("second key = %q", again)
	}
}

func TestSinkUploadAll(t *testing.T) {
	ctx := context.Background()
	store := storage.NewLocalStore(t.TempDir())
	sink := download.NewSink(store, "scenes", "archives")

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.jpg", "a.jpgw"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, p)
	}

	keys, err := sink.UploadAll(ctx, "run-test", paths...)
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if len(keys) != 2 || !strings.HasSuffix(keys[1], "a.jpgw") {
		t.Errorf("keys = %v", keys)
	}
}
