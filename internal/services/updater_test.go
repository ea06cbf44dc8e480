package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ortelius/release-notes-updater/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const manifest8015 = `{
  "channel-version": "8.0",
  "latest-release": "8.0.15",
  "latest-release-date": "2025-04-08",
  "latest-runtime": "8.0.15",
  "latest-sdk": "8.0.408",
  "support-phase": "active",
  "release-type": "lts",
  "lifecycle-policy": "https://aka.ms/dotnetcoresupport",
  "releases": [
    {
      "release-date": "2025-04-08",
      "release-version": "8.0.15",
      "security": true,
      "cve-list": [
        { "cve-id": "CVE-2025-26682", "cve-url": "https://msrc.microsoft.com/update-guide/vulnerability/CVE-2025-26682" }
      ],
      "release-notes": "https://github.com/dotnet/core/blob/main/release-notes/8.0/8.0.15/8.0.15.md",
      "runtime": {
        "version": "8.0.15",
        "vs-version": "17.8.21",
        "files": [
          { "name": "dotnet-runtime-linux-x64.tar.gz", "rid": "linux-x64", "url": "https://builds.dotnet.microsoft.com/dotnet/Runtime/8.0.15/dotnet-runtime-8.0.15-linux-x64.tar.gz", "hash": "abc" }
        ]
      },
      "sdk": {
        "version": "8.0.408",
        "csharp-version": "12.0",
        "files": [
          { "name": "dotnet-sdk-linux-x64.tar.gz", "rid": "linux-x64", "url": "https://builds.dotnet.microsoft.com/dotnet/Sdk/8.0.408/dotnet-sdk-8.0.408-linux-x64.tar.gz", "hash": "def" }
        ]
      },
      "sdks": [
        { "version": "8.0.408", "csharp-version": "12.0" },
        { "version": "8.0.312", "csharp-version": "12.0" }
      ]
    }
  ]
}`

type env struct {
	cfg  *config.Config
	logs *observer.ObservedLogs
	upd  *Updater
}

func newEnv(t *testing.T, versions ...config.VersionBuild) *env {
	root := t.TempDir()
	cfg := config.Default()
	cfg.TemplateDir = filepath.Join("..", "..", "templates")
	cfg.ReferenceDataDir = filepath.Join("..", "..", "reference-data")
	cfg.MsrcFile = filepath.Join("..", "..", "reference-data", "msrc.json")
	cfg.DownloadDir = filepath.Join(root, "downloads")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.ReferenceDir = filepath.Join(root, "core")
	cfg.BackupDir = filepath.Join(root, "backups")
	cfg.Download = false
	cfg.Versions = versions

	core, logs := observer.New(zap.InfoLevel)
	upd := NewUpdater(cfg, zap.New(core).Sugar())
	upd.Now = func() time.Time { return time.Date(2025, 4, 8, 14, 30, 5, 0, time.UTC) }
	return &env{cfg: cfg, logs: logs, upd: upd}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func (e *env) putManifest(t *testing.T, runtimeID, body string) {
	writeFile(t, filepath.Join(e.cfg.DownloadDir, e.cfg.ArtifactName+"_"+runtimeID, "manifests", "releases-json-CDN-"+runtimeID+".json"), body)
}

func TestRunGeneratesAndSyncs(t *testing.T) {
	e := newEnv(t, config.VersionBuild{Runtime: "8.0.15"}, config.VersionBuild{Runtime: "9.0.4"})
	e.putManifest(t, "8.0.15", manifest8015)
	writeFile(t, filepath.Join(e.cfg.ReferenceDir, "releases.md"), "old releases\n")

	require.NoError(t, e.upd.Run(context.Background()))

	page, err := os.ReadFile(filepath.Join(e.cfg.OutputDir, "release-notes", "8.0", "8.0.15", "8.0.15.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "# .NET 8.0.15 - April 08, 2025")
	assert.Contains(t, string(page), "CVE-2025-26682 | .NET Denial of Service Vulnerability")
	assert.Contains(t, string(page), "[dotnet-sdk-linux-x64.tar.gz]: https://builds.dotnet.microsoft.com/dotnet/Sdk/8.0.408/dotnet-sdk-8.0.408-linux-x64.tar.gz")
	assert.NotContains(t, string(page), "SECTION-")

	for _, rel := range []string{
		"release-notes/8.0/8.0.15/8.0.312.md",
		"release-notes/8.0/8.0.15/release.json",
		"release-notes/8.0/install-linux.md",
		"release-notes/8.0/releases.json",
		"release-notes/releases-index.json",
		"release-notes/README.md",
		"releases.md",
	} {
		assert.FileExists(t, filepath.Join(e.cfg.OutputDir, rel))
		assert.FileExists(t, filepath.Join(e.cfg.ReferenceDir, rel), "synced %s", rel)
	}

	backup, err := os.ReadFile(filepath.Join(e.cfg.BackupDir, "2025-04-08_14-30-05", "root", "releases.md"))
	require.NoError(t, err)
	assert.Equal(t, "old releases\n", string(backup))

	assert.Equal(t, 1, e.logs.FilterMessageSnippet("No manifest for 9.0.4").Len())
}

func TestGenerateSkipsBadManifests(t *testing.T) {
	e := newEnv(t,
		config.VersionBuild{Runtime: "9.0.4"},
		config.VersionBuild{Runtime: "8.0.14"},
		config.VersionBuild{Runtime: "8.0.15"},
	)
	e.putManifest(t, "9.0.4", "{not json")
	e.putManifest(t, "8.0.14", manifest8015)
	e.putManifest(t, "8.0.15", manifest8015)

	res, err := e.upd.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"9.0.4", "8.0.14"}, res.Failed)
	require.Len(t, res.Manifests, 1)
	assert.Equal(t, []string{"8.0"}, res.Plan.Channels)
	assert.Equal(t, []string{"8.0.15"}, res.Plan.Runtimes["8.0"])
	assert.Equal(t, 1, e.logs.FilterMessageSnippet("not valid JSON").Len())
}

func TestGenerateWithNothingToDo(t *testing.T) {
	e := newEnv(t, config.VersionBuild{Runtime: "8.0.15"})

	res, err := e.upd.Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Manifests)
	assert.NoFileExists(t, filepath.Join(e.cfg.OutputDir, "releases.md"))
}

type fakeDownloader struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeDownloader) Download(_ context.Context, v config.VersionBuild) (string, error) {
	f.calls = append(f.calls, v.Runtime)
	if f.fail[v.Runtime] {
		return "", errors.New("boom")
	}
	return "dir/" + v.Runtime, nil
}

func TestDownloadAllContinuesAfterFailure(t *testing.T) {
	e := newEnv(t, config.VersionBuild{Runtime: "9.0.4", Build: "1"}, config.VersionBuild{Runtime: "8.0.15", Build: "2"})
	e.cfg.Organization, e.cfg.Project, e.cfg.AccessToken = "dnceng", "internal", "token"
	fake := &fakeDownloader{fail: map[string]bool{"9.0.4": true}}
	e.upd.Downloader = fake

	require.NoError(t, e.upd.DownloadAll(context.Background()))
	assert.Equal(t, []string{"9.0.4", "8.0.15"}, fake.calls)
	assert.Equal(t, 1, e.logs.FilterMessageSnippet("Download for 9.0.4 (build 1) failed").Len())
}

func TestDownloadAllRequiresCredentials(t *testing.T) {
	e := newEnv(t, config.VersionBuild{Runtime: "8.0.15", Build: "2"})
	e.upd.Downloader = &fakeDownloader{}
	assert.ErrorContains(t, e.upd.DownloadAll(context.Background()), "access_token")
}

func TestPlanFromOutput(t *testing.T) {
	e := newEnv(t, config.VersionBuild{Runtime: "8.0.15"}, config.VersionBuild{Runtime: "9.0.4"})
	require.NoError(t, os.MkdirAll(filepath.Join(e.cfg.OutputDir, "release-notes", "8.0", "8.0.15"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(e.cfg.OutputDir, "release-notes", "9.0", "9.0.4"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(e.cfg.OutputDir, "release-notes", "7.0", "7.0.20"), 0o755))

	plan, err := e.upd.PlanFromOutput()
	require.NoError(t, err)
	assert.Equal(t, []string{"9.0", "8.0"}, plan.Channels)
	assert.Equal(t, []string{"8.0.15"}, plan.Runtimes["8.0"])
}
