package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// CropStore persists dialogue box crops and returns an identifier for each.
type CropStore interface {
	Save(index int, crop gocv.Mat) (string, error)
}

// CropFilename is the file name a crop with the given event index is saved under.
func CropFilename(index int) string {
	return fmt.Sprintf("crop_%04d.png", index)
}

// DirCropStore writes crops as PNG files into a directory.
type DirCropStore struct {
	dir string
}

// NewDirCropStore creates dir if needed and returns a store writing into it.
func NewDirCropStore(dir string) (*DirCropStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create crop dir: %w", err)
	}
	return &DirCropStore{dir: dir}, nil
}

// Dir returns the directory crops are written to.
func (s *DirCropStore) Dir() string {
	return s.dir
}

// Save writes crop as crop_NNNN.png and returns the file name. An empty crop
// is not written and yields an empty id.
func (s *DirCropStore) Save(index int, crop gocv.Mat) (string, error) {
	if crop.Empty() {
		return "", nil
	}
	name := CropFilename(index)
	if !gocv.IMWrite(filepath.Join(s.dir, name), crop) {
		return "", fmt.Errorf("failed to write %s", name)
	}
	return name, nil
}
