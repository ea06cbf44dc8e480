// Package coregen writes the documentation set of a release into the output tree: runtime and SDK
// pages, install guides, the channel README and CVE history, the channel and runtime JSON
// documents, and the cross-channel index pages.
package coregen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/util"
	"go.uber.org/zap"
)

// Template file names in the template directory.
const (
	RuntimeTemplate       = "runtime-template.md"
	SdkTemplate           = "sdk-template.md"
	InstallLinuxTemplate  = "install-linux-template.md"
	InstallLinux8Template = "install-linux-template8.md"
	InstallMacOSTemplate  = "install-macos-template.md"
	InstallWinTemplate    = "install-windows-template.md"
	ReleasesTemplate      = "releases-template.md"
	ReleaseNotesTemplate  = "rn-readme-template.md"
)

// Generator renders documents from manifests. Documents that are updated rather than created
// (channel README, cve.md, releases.json) start from the reference tree and are kept in memory
// for the rest of the run, so several runtimes of one channel accumulate into one document.
type Generator struct {
	TemplateDir     string
	OutputDir       string
	ReferenceDir    string
	MetadataBaseURL string
	Reference       *model.ReferenceConfiguration
	Msrc            model.MsrcTable
	Logger          *zap.SugaredLogger

	documents map[string]string
	channels  map[string]*model.ReleaseManifest
}

// Options configures a Generator.
type Options struct {
	TemplateDir     string
	OutputDir       string
	ReferenceDir    string
	MetadataBaseURL string
}

// New returns a Generator.
func New(opts Options, ref *model.ReferenceConfiguration, msrc model.MsrcTable, logger *zap.SugaredLogger) *Generator {
	if ref == nil {
		ref = model.NewReferenceConfiguration()
	}
	return &Generator{
		TemplateDir:     opts.TemplateDir,
		OutputDir:       opts.OutputDir,
		ReferenceDir:    opts.ReferenceDir,
		MetadataBaseURL: opts.MetadataBaseURL,
		Reference:       ref,
		Msrc:            msrc,
		Logger:          logger,
		documents:       map[string]string{},
		channels:        map[string]*model.ReleaseManifest{},
	}
}

// channelDir is release-notes/<channel> relative to the output or reference root.
func channelDir(channel string) string {
	return filepath.Join("release-notes", channel)
}

// template reads a template. A missing template is reported and the document skipped.
func (g *Generator) template(name string) (string, bool) {
	path := filepath.Join(g.TemplateDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			g.Logger.Warnf("Template %s not found, skipping document", path)
		} else {
			g.Logger.Errorf("Failed to read template %s: %v", path, err)
		}
		return "", false
	}
	return string(data), true
}

// write stores content at rel below the output directory.
func (g *Generator) write(rel, content string) error {
	path := filepath.Join(g.OutputDir, rel)
	if err := util.WriteFile(path, []byte(content)); err != nil {
		return err
	}
	g.Logger.Infof("Wrote %s", path)
	return nil
}

// document returns the working copy of rel: the version already updated in this run, else the
// reference tree copy.
func (g *Generator) document(rel string) (string, bool) {
	if content, ok := g.documents[rel]; ok {
		return content, true
	}
	data, err := os.ReadFile(filepath.Join(g.ReferenceDir, rel))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// saveDocument records the working copy of rel and writes it out.
func (g *Generator) saveDocument(rel, content string) error {
	g.documents[rel] = content
	return g.write(rel, content)
}

func (g *Generator) msrcFor(runtimeID string) *model.MsrcRecord {
	return g.Msrc.ForRuntime(runtimeID)
}

func releaseFor(m *model.ReleaseManifest, runtimeID string) (*model.Release, error) {
	rel := m.ReleaseForRuntime(runtimeID)
	if rel == nil {
		return nil, fmt.Errorf("manifest for channel %s has no release with runtime %s", m.ChannelVersion, runtimeID)
	}
	return rel, nil
}
