// Package manifest locates and parses the release manifests extracted from pipeline artifacts.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ortelius/release-notes-updater/model"
)

// ErrNotFound is returned when no manifest exists for a runtime identifier. Callers skip that
// version and carry on with the batch.
var ErrNotFound = errors.New("release manifest not found")

// ParseError reports a manifest that exists but is not valid JSON for the manifest model.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse release manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileName returns the manifest file name published for a runtime identifier.
func FileName(runtimeID string) string {
	return fmt.Sprintf("releases-json-CDN-%s.json", runtimeID)
}

// Loader finds manifests under <DownloadDir>/<ArtifactName>_<runtime>/.
type Loader struct {
	DownloadDir  string
	ArtifactName string
}

// NewLoader returns a loader rooted at downloadDir.
func NewLoader(downloadDir, artifactName string) *Loader {
	return &Loader{DownloadDir: downloadDir, ArtifactName: artifactName}
}

// ArtifactDir returns the directory an artifact for runtimeID is extracted into.
func (l *Loader) ArtifactDir(runtimeID string) string {
	return filepath.Join(l.DownloadDir, fmt.Sprintf("%s_%s", l.ArtifactName, runtimeID))
}

// Find walks the artifact directory of runtimeID looking for its manifest file.
func (l *Loader) Find(runtimeID string) (string, bool) {
	root := l.ArtifactDir(runtimeID)
	want := FileName(runtimeID)
	found := ""

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable or missing subtree, keep looking elsewhere
			return nil
		}
		if !d.IsDir() && d.Name() == want {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found, found != ""
}

// Load finds and parses the manifest of runtimeID.
func (l *Loader) Load(runtimeID string) (*model.ReleaseManifest, error) {
	path, ok := l.Find(runtimeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s under %s", ErrNotFound, FileName(runtimeID), l.ArtifactDir(runtimeID))
	}
	return LoadFile(path)
}

// LoadFile parses a manifest or channel releases.json file.
func LoadFile(path string) (*model.ReleaseManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m model.ReleaseManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &m, nil
}
