package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// Build directory layout:
//
//	buildDir/
//	  .fastobuild.json        # manifest: one Record per installed recipe
//	  <repo>/                 # cloned sources
//	    build_cmake_release/
//	  <name>-<version>/       # extracted tarballs
const manifestFile = ".fastobuild.json"

// Record describes one successful build.
type Record struct {
	Name      string    `json:"name"`
	Version   string    `json:"version,omitempty"`
	SourceDir string    `json:"source_dir"`
	BuildTime time.Time `json:"build_time"`
}

type manifestFileData struct {
	Records []Record `json:"records"`
}

type manifest struct {
	path string

	mu   sync.Mutex
	recs []Record
}

func newManifest(dir string) *manifest {
	return &manifest{path: filepath.Join(dir, manifestFile)}
}

func (m *manifest) add(r Record) error {
	if r.BuildTime.IsZero() {
		r.BuildTime = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, r)
	data, err := json.MarshalIndent(manifestFileData{Records: m.recs}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

func (m *manifest) records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.recs)
}

// LoadManifest reads the records a previous session left in dir.
func LoadManifest(dir string) ([]Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}
	var mf manifestFileData
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, err
	}
	return mf.Records, nil
}
