package media

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	FilterJpegQuality   = 90
	FilterFileExtension = ".jpg"
)

// Filter names a transformation applied to a capture before it is saved.
type Filter string

const (
	FilterNone         Filter = "none"
	FilterGrayscale    Filter = "grayscale"
	FilterInvert       Filter = "invert"
	FilterHighContrast Filter = "high-contrast"
	FilterBright       Filter = "bright"
)

// Filters lists the supported filters in menu order.
var Filters = []Filter{FilterNone, FilterGrayscale, FilterInvert, FilterHighContrast, FilterBright}

// ParseFilter maps a user-facing name to a Filter.
func ParseFilter(name string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Filters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", name)
}

// Pipeline writes filtered copies of captures into a scratch directory. The
// output is an ordinary file that can be handed to the library like any capture.
type Pipeline struct {
	scratchDir string
}

// NewPipeline creates the scratch directory if needed.
func NewPipeline(scratchDir string) (*Pipeline, error) {
	if err := os.MkdirAll(scratchDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create filter scratch directory '%s': %w", scratchDir, err)
	}
	return &Pipeline{scratchDir: scratchDir}, nil
}

func applyFilter(img image.Image, f Filter) image.Image {
	switch f {
	case FilterGrayscale:
		return imaging.Grayscale(img)
	case FilterInvert:
		return imaging.Invert(img)
	case FilterHighContrast:
		return imaging.AdjustContrast(imaging.Grayscale(img), 60)
	case FilterBright:
		return imaging.AdjustBrightness(img, 30)
	default:
		return img
	}
}

// Apply decodes src, applies f and saves the result as a new JPEG. It returns
// the path of the new file; src is left untouched.
func (p *Pipeline) Apply(src string, f Filter) (string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open capture '%s': %w", src, err)
	}

	outID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID for filtered capture: %w", err)
	}
	outPath := filepath.Join(p.scratchDir, outID.String()+FilterFileExtension)

	if err := imaging.Save(applyFilter(img, f), outPath, imaging.JPEGQuality(FilterJpegQuality)); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("failed to save filtered capture: %w", err)
	}
	return outPath, nil
}
