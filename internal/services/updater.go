// Package services provides the batch run of the release notes updater: download, generate and
// sync, one configured runtime at a time.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ortelius/release-notes-updater/coregen"
	"github.com/ortelius/release-notes-updater/coresync"
	"github.com/ortelius/release-notes-updater/internal/artifacts"
	"github.com/ortelius/release-notes-updater/internal/config"
	"github.com/ortelius/release-notes-updater/internal/manifest"
	"github.com/ortelius/release-notes-updater/internal/reference"
	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/tables"
	"github.com/ortelius/release-notes-updater/util"
	"go.uber.org/zap"
)

// Downloader fetches the manifest artifact of one configured runtime.
type Downloader interface {
	Download(ctx context.Context, v config.VersionBuild) (string, error)
}

// Updater runs the configured versions through download, generation and sync.
type Updater struct {
	Config     *config.Config
	Logger     *zap.SugaredLogger
	Downloader Downloader
	Loader     *manifest.Loader
	Generator  *coregen.Generator
	Now        func() time.Time
}

// Result is what a generation pass produced.
type Result struct {
	Manifests []*model.ReleaseManifest
	Channels  []tables.Channel
	Plan      coresync.Plan
	// Failed lists the runtimes that were skipped.
	Failed []string
}

// NewUpdater wires the components of a run from the configuration.
func NewUpdater(cfg *config.Config, logger *zap.SugaredLogger) *Updater {
	ref := reference.Load(cfg.ReferenceDataDir, logger)
	msrc := reference.LoadMsrc(cfg.MsrcFile, logger)

	return &Updater{
		Config:     cfg,
		Logger:     logger,
		Downloader: artifacts.NewDownloader(cfg, logger),
		Loader:     manifest.NewLoader(cfg.DownloadDir, cfg.ArtifactName),
		Generator: coregen.New(coregen.Options{
			TemplateDir:     cfg.TemplateDir,
			OutputDir:       cfg.OutputDir,
			ReferenceDir:    cfg.ReferenceDir,
			MetadataBaseURL: cfg.MetadataBaseURL,
		}, ref, msrc, logger),
		Now: time.Now,
	}
}

// Run performs the whole batch. Download and sync follow the configuration toggles.
func (u *Updater) Run(ctx context.Context) error {
	if u.Config.Download {
		if err := u.DownloadAll(ctx); err != nil {
			return err
		}
	}

	res, err := u.Generate(ctx)
	if err != nil {
		return err
	}

	if u.Config.Sync {
		_ = u.Sync(res.Plan) // failures are logged per file
	}

	if len(res.Failed) > 0 {
		u.Logger.Warnf("Finished with %d skipped runtime(s): %v", len(res.Failed), res.Failed)
	} else {
		u.Logger.Infof("Finished %d runtime(s)", len(res.Manifests))
	}
	return nil
}

// DownloadAll fetches the artifact of every configured version. A failing version is logged and
// the next one proceeds.
func (u *Updater) DownloadAll(ctx context.Context) error {
	if err := u.Config.ValidateDownload(); err != nil {
		return err
	}
	for _, v := range u.Config.Versions {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir, err := u.Downloader.Download(ctx, v)
		if err != nil {
			u.Logger.Errorf("Download for %s (build %s) failed: %v", v.Runtime, v.Build, err)
			continue
		}
		u.Logger.Infof("Artifact for %s ready in %s", v.Runtime, dir)
	}
	return nil
}

// GenerateVersion renders every per-release document of one runtime.
func (u *Updater) GenerateVersion(m *model.ReleaseManifest, runtimeID string) error {
	g := u.Generator
	steps := []struct {
		name string
		run  func() error
	}{
		{"runtime page", func() error { return g.RuntimePage(m, runtimeID) }},
		{"SDK pages", func() error { _, err := g.SdkPages(m, runtimeID); return err }},
		{"install guides", func() error { return g.InstallPages(m, runtimeID) }},
		{"channel README", func() error { return g.VersionReadme(m, runtimeID) }},
		{"cve.md", func() error { return g.CveFile(m, runtimeID) }},
		{"releases.json", func() error { return g.ChannelReleasesJSON(m, runtimeID) }},
		{"release.json", func() error { return g.RuntimeReleaseJSON(m, runtimeID) }},
	}

	var errs []error
	for _, s := range steps {
		if err := s.run(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Generate loads and renders every configured version, then the cross-channel documents.
func (u *Updater) Generate(ctx context.Context) (*Result, error) {
	res := &Result{Plan: coresync.Plan{Runtimes: map[string][]string{}}}

	for _, v := range u.Config.Versions {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		m, err := u.Loader.Load(v.Runtime)
		if err != nil {
			var perr *manifest.ParseError
			switch {
			case errors.Is(err, manifest.ErrNotFound):
				u.Logger.Warnf("No manifest for %s, skipping: %v", v.Runtime, err)
			case errors.As(err, &perr):
				u.Logger.Errorf("Manifest for %s is not valid JSON, skipping: %v", v.Runtime, err)
			default:
				u.Logger.Errorf("Failed to load manifest for %s, skipping: %v", v.Runtime, err)
			}
			res.Failed = append(res.Failed, v.Runtime)
			continue
		}
		if m.ReleaseForRuntime(v.Runtime) == nil {
			u.Logger.Errorf("Manifest for channel %s has no release for runtime %s, skipping", m.ChannelVersion, v.Runtime)
			res.Failed = append(res.Failed, v.Runtime)
			continue
		}

		u.Logger.Infof("Generating documents for %s (channel %s)", v.Runtime, m.ChannelVersion)
		if err := u.GenerateVersion(m, v.Runtime); err != nil {
			u.Logger.Errorf("Generation for %s incomplete: %v", v.Runtime, err)
			res.Failed = append(res.Failed, v.Runtime)
		}

		res.Manifests = append(res.Manifests, m)
		res.Channels = append(res.Channels, tables.ChannelFromManifest(m))
		if _, seen := res.Plan.Runtimes[m.ChannelVersion]; !seen {
			res.Plan.Channels = append(res.Plan.Channels, m.ChannelVersion)
		}
		res.Plan.Runtimes[m.ChannelVersion] = append(res.Plan.Runtimes[m.ChannelVersion], v.Runtime)
	}

	if len(res.Manifests) == 0 {
		u.Logger.Warn("No manifests were processed, leaving the index documents unchanged")
		return res, nil
	}

	if err := u.Generator.ReleasesIndex(res.Manifests); err != nil {
		u.Logger.Errorf("Failed to write releases-index.json: %v", err)
	}
	if err := u.Generator.ReleasesMarkdown(res.Channels); err != nil {
		u.Logger.Errorf("Failed to write releases.md: %v", err)
	}
	if err := u.Generator.ReleaseNotesReadme(res.Channels); err != nil {
		u.Logger.Errorf("Failed to write release-notes/README.md: %v", err)
	}
	return res, nil
}

// Sync copies the generated documents of plan into the reference tree. Failures are logged per
// file and reported in the returned error.
func (u *Updater) Sync(plan coresync.Plan) error {
	now := u.Now
	if now == nil {
		now = time.Now
	}
	syncer := coresync.NewSyncer(u.Config.OutputDir, u.Config.ReferenceDir, u.Config.BackupDir, u.Logger, now)
	u.Logger.Infof("Syncing %s into %s, backups in %s", u.Config.OutputDir, u.Config.ReferenceDir, syncer.BackupRoot)
	err := syncer.Sync(plan)
	if err != nil {
		u.Logger.Errorf("Sync finished with errors: %v", err)
	}
	return err
}

// PlanFromOutput rebuilds a sync plan from an existing output tree: every configured runtime that
// has a directory under release-notes/<channel>/ is included.
func (u *Updater) PlanFromOutput() (coresync.Plan, error) {
	plan := coresync.Plan{Runtimes: map[string][]string{}}
	root := filepath.Join(u.Config.OutputDir, "release-notes")
	entries, err := os.ReadDir(root)
	if err != nil {
		return plan, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var channels []string
	for _, e := range entries {
		if e.IsDir() {
			channels = append(channels, e.Name())
		}
	}
	util.SortChannelsDesc(channels)

	for _, ch := range channels {
		for _, rt := range u.Config.RuntimeIDs() {
			if !util.DirExists(filepath.Join(root, ch, rt)) {
				continue
			}
			if _, seen := plan.Runtimes[ch]; !seen {
				plan.Channels = append(plan.Channels, ch)
			}
			plan.Runtimes[ch] = append(plan.Runtimes[ch], rt)
		}
	}
	return plan, nil
}
