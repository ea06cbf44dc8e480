// Package coresync reconciles the generated documentation tree with the reference checkout of
// the published docs. Single files are always replaced, with the previous version backed up.
// Runtime directories are copied in full when new, and otherwise only gain the files they do
// not have yet, so hand edits to published pages survive an SDK-only release.
package coresync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ortelius/release-notes-updater/util"
	"go.uber.org/zap"
)

// Backup contexts for files that do not belong to a channel.
const (
	RootContext         = "root"
	ReleaseNotesContext = "release-notes"
)

// RootFiles are synced from the top of the output tree.
var RootFiles = []string{"README.md", "releases.md"}

// ReleaseNotesFiles are synced from release-notes/.
var ReleaseNotesFiles = []string{"README.md", "releases-index.json"}

// ChannelFiles are synced from release-notes/<channel>/.
var ChannelFiles = []string{"README.md", "cve.md", "install-linux.md", "install-macos.md", "install-windows.md", "releases.json"}

// Mode says how a directory was synced.
type Mode int

const (
	// Full copies every file of a directory that did not exist at the destination.
	Full Mode = iota
	// Selective copies only files missing at an existing destination.
	Selective
)

func (m Mode) String() string {
	if m == Full {
		return "full"
	}
	return "selective"
}

// Syncer copies from OutputDir into ReferenceDir.
type Syncer struct {
	OutputDir    string
	ReferenceDir string
	BackupRoot   string
	Logger       *zap.SugaredLogger
	Now          func() time.Time
}

// NewSyncer returns a Syncer whose backups go to <backupDir>/<yyyy-MM-dd_HH-mm-ss>.
func NewSyncer(outputDir, referenceDir, backupDir string, logger *zap.SugaredLogger, now func() time.Time) *Syncer {
	if now == nil {
		now = time.Now
	}
	return &Syncer{
		OutputDir:    outputDir,
		ReferenceDir: referenceDir,
		BackupRoot:   filepath.Join(backupDir, now().Format("2006-01-02_15-04-05")),
		Logger:       logger,
		Now:          now,
	}
}

// Plan lists what a sync run covers.
type Plan struct {
	Channels []string
	// Runtimes maps a channel to the runtime directories generated for it.
	Runtimes map[string][]string
}

// Sync reconciles every file and directory of plan. A failing file is logged and the run moves on;
// the failures are returned together.
func (s *Syncer) Sync(plan Plan) error {
	var errs []error

	for _, name := range RootFiles {
		errs = append(errs, s.SyncFile(name, RootContext))
	}
	for _, name := range ReleaseNotesFiles {
		errs = append(errs, s.SyncFile(filepath.Join("release-notes", name), ReleaseNotesContext))
	}
	for _, channel := range plan.Channels {
		for _, name := range ChannelFiles {
			errs = append(errs, s.SyncFile(filepath.Join("release-notes", channel, name), channel))
		}
		for _, runtime := range plan.Runtimes[channel] {
			_, err := s.SyncDir(filepath.Join("release-notes", channel, runtime), filepath.Join(channel, runtime))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SyncFile replaces reference/rel with output/rel. A missing source is skipped.
func (s *Syncer) SyncFile(rel, context string) error {
	src := filepath.Join(s.OutputDir, rel)
	if !util.FileExists(src) {
		s.Logger.Infof("Nothing generated for %s, skipping", rel)
		return nil
	}
	dst := filepath.Join(s.ReferenceDir, rel)
	return s.copyWithBackup(src, dst, filepath.Join(context, filepath.Base(rel)))
}

// SyncDir reconciles the directory output/rel with reference/rel and reports the mode used.
func (s *Syncer) SyncDir(rel, context string) (Mode, error) {
	srcRoot := filepath.Join(s.OutputDir, rel)
	dstRoot := filepath.Join(s.ReferenceDir, rel)

	mode := Selective
	if !util.DirExists(dstRoot) {
		mode = Full
	}
	if !util.DirExists(srcRoot) {
		s.Logger.Infof("Nothing generated under %s, skipping", rel)
		return mode, nil
	}
	s.Logger.Infof("Syncing %s (%s)", rel, mode)

	var errs []error
	walkErr := filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		sub, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstRoot, sub)

		if mode == Selective && util.FileExists(dst) {
			s.Logger.Infof("Keeping existing %s", dst)
			return nil
		}
		if err := s.copyWithBackup(path, dst, filepath.Join(context, sub)); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Errorf("failed to walk %s: %w", srcRoot, walkErr))
	}
	return mode, errors.Join(errs...)
}

// copyWithBackup backs up dst (best effort) and then replaces it with src.
func (s *Syncer) copyWithBackup(src, dst, backupRel string) error {
	if util.FileExists(dst) {
		if path, err := s.backup(dst, backupRel); err != nil {
			s.Logger.Errorf("Backup of %s failed, continuing: %v", dst, err)
		} else {
			s.Logger.Infof("Backed up %s to %s", dst, path)
		}
	}

	if err := copyFile(src, dst); err != nil {
		s.Logger.Errorf("Failed to copy %s to %s: %v", src, dst, err)
		return err
	}
	s.Logger.Infof("Copied %s to %s", src, dst)
	return nil
}

// backup copies file to <BackupRoot>/<rel>. If that name is already taken in this run, a _HHmmss
// suffix is added before the extension, then _2, _3 and so on until the name is free. An existing
// backup is never replaced.
func (s *Syncer) backup(file, rel string) (string, error) {
	target := filepath.Join(s.BackupRoot, rel)
	if util.FileExists(target) {
		ext := filepath.Ext(target)
		stem := strings.TrimSuffix(target, ext) + "_" + s.Now().Format("150405")
		target = stem + ext
		for n := 2; util.FileExists(target); n++ {
			if n > maxBackupSuffix {
				return "", fmt.Errorf("no free backup name for %s", filepath.Join(s.BackupRoot, rel))
			}
			target = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
	}
	if err := copyFile(file, target); err != nil {
		return "", err
	}
	return target, nil
}

// maxBackupSuffix bounds the collision counter of one backup name.
const maxBackupSuffix = 1000

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	return util.WriteFile(dst, data)
}
