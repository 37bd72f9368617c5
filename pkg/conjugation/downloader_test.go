package conjugation

import (
	"context"
	"os"
	"testing"
)

func TestEnsureDataset_LocalCache(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "dataset-test-*.json")
	if err != nil {
		t.Fatalf("tempfile: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	// The file exists, so EnsureDataset must return immediately without
	// attempting any network access.
	if err := EnsureDataset(context.Background(), tmpFile.Name()); err != nil {
		t.Fatalf("EnsureDataset failed with local file: %v", err)
	}
}
