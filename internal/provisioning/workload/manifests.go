package workload

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/imamik/mreks/internal/config"
)

// ErrManifestDir is returned when the common manifest directory is missing.
var ErrManifestDir = errors.New("manifest directory not found")

var manifestExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// Manifest is one manifest file.
type Manifest struct {
	// Source is the path the manifest was read from.
	Source string
	// Dir is the manifest directory name, e.g. "yaml-common".
	Dir  string
	Data []byte
}

// ManifestSet is the ordered manifests of one region: common first, then
// region-specific. Within a directory files are ordered by name.
type ManifestSet struct {
	Region    string
	Manifests []Manifest
}

// Len returns the number of manifests.
func (s ManifestSet) Len() int {
	return len(s.Manifests)
}

// Sources returns the manifest paths in application order.
func (s ManifestSet) Sources() []string {
	out := make([]string, len(s.Manifests))
	for i, m := range s.Manifests {
		out[i] = m.Source
	}
	return out
}

// Concat joins all manifests into one multi-document YAML stream.
func (s ManifestSet) Concat() []byte {
	var b strings.Builder
	for _, m := range s.Manifests {
		b.WriteString("---\n")
		b.WriteString("# Source: " + m.Source + "\n")
		b.Write(m.Data)
		if len(m.Data) > 0 && m.Data[len(m.Data)-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// LoadManifestSet reads <root>/<commonDir> and then <root>/yaml-<region>.
// A missing region directory yields no region manifests; a missing common
// directory is an error.
func LoadManifestSet(root, commonDir, region string) (ManifestSet, error) {
	set := ManifestSet{Region: region}

	common, err := readManifestDir(root, commonDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return set, fmt.Errorf("%w: %s", ErrManifestDir, filepath.Join(root, commonDir))
		}
		return set, err
	}

	regional, err := readManifestDir(root, config.RegionManifestDir(region))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return set, err
	}

	set.Manifests = append(common, regional...)
	return set, nil
}

func readManifestDir(root, dir string) ([]Manifest, error) {
	path := filepath.Join(root, dir)
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	// os.ReadDir returns entries sorted by filename.
	var manifests []Manifest
	for _, e := range entries {
		if e.IsDir() || !manifestExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		source := filepath.Join(path, e.Name())
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", source, err)
		}
		manifests = append(manifests, Manifest{Source: source, Dir: dir, Data: data})
	}
	return manifests, nil
}
