package encoder

import (
	"fmt"
	"image"
	"log"

	"github.com/anthonynsimon/bild/imgio"
)

// Snapshot writes img to path as PNG.
func Snapshot(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	log.Printf("Saved snapshot to %s", path)
	return nil
}
