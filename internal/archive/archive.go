// Package archive writes and lists the JSON artifacts produced when old
// events and aggregates age out of the active store.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/models"
)

const (
	// DirName is the name of the archive directory inside the config directory
	DirName = "archives"
	// FilePrefix is the prefix for archive artifact files
	FilePrefix = "archive-"
	// FileSuffix is the suffix for archive artifact files
	FileSuffix = ".json"
)

// Artifact is the on-disk layout of one archive file.
type Artifact struct {
	CutoffDay  string                  `json:"cutoff_day"`
	Events     []models.ResponseEvent  `json:"events"`
	Aggregates []models.DailyAggregate `json:"daily_stats"`
	ArchivedOn time.Time               `json:"archived_on"`
}

// Info describes an archive artifact on disk.
type Info struct {
	Path string
	Size int64
}

// Manager handles archive artifact operations for one config directory.
type Manager struct {
	archiveDir string
}

// NewManager creates a manager rooted next to the given database path.
func NewManager(dbPath string) *Manager {
	return &Manager{
		archiveDir: filepath.Join(filepath.Dir(dbPath), DirName),
	}
}

// Dir returns the archive directory path.
func (m *Manager) Dir() string {
	return m.archiveDir
}

// Write stores the artifact under a filename keyed by the cutoff date.
// A second archive on the same cutoff date gets a counter suffix rather
// than clobbering the first.
func (m *Manager) Write(artifact Artifact) (string, error) {
	if err := os.MkdirAll(m.archiveDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	cutoff, err := time.Parse(constants.DateFormat, artifact.CutoffDay)
	if err != nil {
		return "", fmt.Errorf("invalid cutoff day %q: %w", artifact.CutoffDay, err)
	}

	stamp := cutoff.Format(constants.ArchiveStampFormat)
	path := filepath.Join(m.archiveDir, FilePrefix+stamp+FileSuffix)

	counter := 1
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(m.archiveDir, fmt.Sprintf("%s%s-%d%s", FilePrefix, stamp, counter, FileSuffix))
		counter++
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique archive filename for %s", stamp)
		}
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode archive: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write archive: %w", err)
	}

	return path, nil
}

// Read loads an artifact back from disk.
func (m *Manager) Read(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read archive %s: %w", path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return Artifact{}, fmt.Errorf("failed to parse archive %s: %w", path, err)
	}

	return artifact, nil
}

// List returns the archive artifacts on disk, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.archiveDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileSuffix) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Path: filepath.Join(m.archiveDir, name),
			Size: fi.Size(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Path > infos[j].Path
	})

	return infos, nil
}
