package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/midgard-levelgen/pkg/level"
)

// File names written by WriteAll.
const (
	PlacementsFile = "placements.yaml"
	OBJFile        = "terrain.obj"
	PreviewFile    = "heightmap.png"
)

// Format names accepted by WriteAll.
const (
	FormatPlacements = "placements"
	FormatOBJ        = "obj"
	FormatPreview    = "preview"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Options controls WriteAll.
type Options struct {
	Formats      []string
	PreviewScale int
}

// WriteAll writes the requested formats for lvl into dir and returns the
// paths written.
func WriteAll(dir string, lvl *level.Level, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	for _, format := range opts.Formats {
		var (
			name  string
			write func(io.Writer) error
		)
		switch format {
		case FormatPlacements:
			name = PlacementsFile
			write = func(w io.Writer) error { return WritePlacements(w, lvl) }
		case FormatOBJ:
			name = OBJFile
			write = func(w io.Writer) error { return WriteOBJ(w, lvl.Mesh, "terrain") }
		case FormatPreview:
			name = PreviewFile
			write = func(w io.Writer) error { return WritePreview(w, lvl, opts.PreviewScale) }
		default:
			return written, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
		}

		path := filepath.Join(dir, name)
		if err := writeFile(path, write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
