package assets

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	// Registered decoders for the formats listing photos come in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"bds-go/internal/estate"
)

// ListImages decodes every file directly inside folder and returns the
// decodable ones in directory order, plus the count of files skipped as
// non-image or unreadable. Display is best-effort: a corrupt file never
// fails the listing. The result is recomputed from disk on each call.
func (m *OSManager) ListImages(folder string) ([]estate.ImageInfo, int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("reading folder: %w", err)
	}

	var images []estate.ImageInfo
	skipped := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, ok := decodeImage(filepath.Join(folder, entry.Name()))
		if !ok {
			skipped++
			continue
		}
		info.Name = entry.Name()
		images = append(images, info)
	}
	return images, skipped, nil
}

// decodeImage reads just enough of the file to identify the format and
// dimensions.
func decodeImage(path string) (estate.ImageInfo, bool) {
	f, err := os.Open(path)
	if err != nil {
		return estate.ImageInfo{}, false
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return estate.ImageInfo{}, false
	}
	return estate.ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, true
}
