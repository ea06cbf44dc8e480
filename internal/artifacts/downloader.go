// Package artifacts downloads the release manifest build artifacts of the configured runtimes
// from Azure DevOps and unpacks them into the download directory.
package artifacts

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/ortelius/release-notes-updater/internal/config"
	"go.uber.org/zap"
)

// DefaultBaseURL is the Azure DevOps organization root.
const DefaultBaseURL = "https://dev.azure.com"

const (
	initialInterval = 1 * time.Second
	maxInterval     = 30 * time.Second
	maxElapsedTime  = 2 * time.Minute
)

// ErrArtifactNotFound is returned when a build has no artifact with the configured name.
var ErrArtifactNotFound = errors.New("artifact not found")

// HTTPError is a non-success response from the artifact service.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %d %s: %s", e.URL, e.StatusCode, e.Status, e.Body)
}

// Temporary reports whether a retry may succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == fiber.StatusTooManyRequests
}

// Artifact is one entry of the build artifacts listing.
type Artifact struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Resource struct {
		Type        string `json:"type"`
		DownloadURL string `json:"downloadUrl"`
	} `json:"resource"`
}

type artifactList struct {
	Count int        `json:"count"`
	Value []Artifact `json:"value"`
}

// Downloader fetches build artifacts.
type Downloader struct {
	BaseURL      string
	Organization string
	Project      string
	ArtifactName string
	Token        string
	DownloadDir  string
	Logger       *zap.SugaredLogger

	// newBackOff is replaced in tests to avoid real waits.
	newBackOff func() backoff.BackOff
}

// NewDownloader returns a Downloader for the configured Azure DevOps project.
func NewDownloader(cfg *config.Config, logger *zap.SugaredLogger) *Downloader {
	return &Downloader{
		BaseURL:      DefaultBaseURL,
		Organization: cfg.Organization,
		Project:      cfg.Project,
		ArtifactName: cfg.ArtifactName,
		Token:        cfg.AccessToken,
		DownloadDir:  cfg.DownloadDir,
		Logger:       logger,
		newBackOff:   defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = maxElapsedTime
	return bo
}

// TargetDir is the directory the artifact of a runtime is unpacked into.
func (d *Downloader) TargetDir(runtimeID string) string {
	return filepath.Join(d.DownloadDir, d.ArtifactName+"_"+runtimeID)
}

// ListURL is the artifacts listing endpoint of a build.
func (d *Downloader) ListURL(build string) string {
	return fmt.Sprintf("%s/%s/%s/_apis/build/builds/%s/artifacts?api-version=6.0",
		strings.TrimRight(d.BaseURL, "/"), d.Organization, d.Project, build)
}

// Download fetches the artifact of one build and unpacks it into TargetDir(v.Runtime).
func (d *Downloader) Download(ctx context.Context, v config.VersionBuild) (string, error) {
	d.Logger.Infof("Fetching artifacts of build %s for runtime %s", v.Build, v.Runtime)

	body, err := d.get(ctx, d.ListURL(v.Build))
	if err != nil {
		return "", err
	}
	var list artifactList
	if err := json.Unmarshal(body, &list); err != nil {
		return "", fmt.Errorf("failed to decode artifact list of build %s: %w", v.Build, err)
	}

	var artifact *Artifact
	for i := range list.Value {
		if list.Value[i].Name == d.ArtifactName {
			artifact = &list.Value[i]
			break
		}
	}
	if artifact == nil || artifact.Resource.DownloadURL == "" {
		return "", fmt.Errorf("%w: %s in build %s", ErrArtifactNotFound, d.ArtifactName, v.Build)
	}

	archive, err := d.get(ctx, artifact.Resource.DownloadURL)
	if err != nil {
		return "", err
	}

	zipPath := filepath.Join(d.DownloadDir, d.ArtifactName+"_"+v.Runtime+".zip")
	if err := os.MkdirAll(d.DownloadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	if err := os.WriteFile(zipPath, archive, 0o644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", zipPath, err)
	}
	defer func() {
		if err := os.Remove(zipPath); err != nil {
			d.Logger.Warnf("Failed to remove %s: %v", zipPath, err)
		}
	}()

	target := d.TargetDir(v.Runtime)
	if err := Extract(zipPath, target); err != nil {
		return "", err
	}
	d.Logger.Infof("Unpacked %s into %s", d.ArtifactName, target)
	return target, nil
}

// get performs an authenticated GET, retrying transport failures and 5xx responses.
func (d *Downloader) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		code, b, errs := fiber.Get(url).
			BasicAuth("", d.Token).
			MaxRedirectsCount(5).
			Bytes()
		if len(errs) > 0 {
			return fmt.Errorf("GET %s: %w", url, errors.Join(errs...))
		}
		if code < 200 || code > 299 {
			herr := &HTTPError{URL: url, StatusCode: code, Status: utils.StatusMessage(code), Body: truncate(string(b), 512)}
			if herr.Temporary() {
				return herr
			}
			return backoff.Permanent(herr)
		}
		body = b
		return nil
	}

	newBackOff := d.newBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	err := backoff.RetryNotify(op, newBackOff(), func(err error, wait time.Duration) {
		d.Logger.Warnf("Retrying %s in %s: %v", url, wait, err)
	})
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		return nil, err
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Extract unpacks the zip archive at src into dest. Entries that would land outside dest are
// rejected.
func Extract(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer r.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	for _, f := range r.File {
		path := filepath.Join(root, f.Name)
		if path != root && !strings.HasPrefix(path, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes %s", f.Name, dest)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, path); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return out.Close()
}
