package coregen

import (
	"path/filepath"

	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/projector"
	"github.com/ortelius/release-notes-updater/util"
)

func (g *Generator) context(m *model.ReleaseManifest, rel *model.Release) projector.ReleaseContext {
	ctx := projector.ReleaseContext{Manifest: m, Release: rel}
	ctx.Msrc = g.msrcFor(ctx.RuntimeVersion())
	return ctx
}

// RuntimePage writes release-notes/<channel>/<runtime>/<runtime>.md.
func (g *Generator) RuntimePage(m *model.ReleaseManifest, runtimeID string) error {
	rel, err := releaseFor(m, runtimeID)
	if err != nil {
		return err
	}
	tmpl, ok := g.template(RuntimeTemplate)
	if !ok {
		return nil
	}
	out := projector.Project(tmpl, projector.RuntimePlaceholders(g.context(m, rel)))
	return g.write(filepath.Join(channelDir(m.ChannelVersion), runtimeID, runtimeID+".md"), out)
}

// SdkPages writes one page per additional SDK of the release, next to the runtime page. The
// primary SDK is documented on the runtime page and gets none.
func (g *Generator) SdkPages(m *model.ReleaseManifest, runtimeID string) ([]string, error) {
	rel, err := releaseFor(m, runtimeID)
	if err != nil {
		return nil, err
	}
	ctx := g.context(m, rel)
	latest := ctx.LatestSdk()

	var written []string
	var tmpl string
	for _, sdk := range ctx.Sdks() {
		if sdk.Version == "" || sdk.Version == latest {
			continue
		}
		if tmpl == "" {
			t, ok := g.template(SdkTemplate)
			if !ok {
				return nil, nil
			}
			tmpl = t
		}
		out := projector.Project(tmpl, projector.SdkPlaceholders(ctx, sdk))
		if err := g.write(filepath.Join(channelDir(m.ChannelVersion), runtimeID, sdk.Version+".md"), out); err != nil {
			return written, err
		}
		written = append(written, sdk.Version)
	}
	return written, nil
}

// InstallPages writes the Linux, macOS and Windows install guides of the channel. Channels up to
// 8.0 use the older Linux guide layout.
func (g *Generator) InstallPages(m *model.ReleaseManifest, runtimeID string) error {
	rel, err := releaseFor(m, runtimeID)
	if err != nil {
		return err
	}
	placeholders := projector.InstallPlaceholders(g.context(m, rel))

	linux := InstallLinuxTemplate
	if util.CompareChannels(m.ChannelVersion, "8.0") <= 0 {
		linux = InstallLinux8Template
	}

	pages := []struct{ template, name string }{
		{linux, "install-linux.md"},
		{InstallMacOSTemplate, "install-macos.md"},
		{InstallWinTemplate, "install-windows.md"},
	}
	for _, p := range pages {
		tmpl, ok := g.template(p.template)
		if !ok {
			continue
		}
		if err := g.write(filepath.Join(channelDir(m.ChannelVersion), p.name), projector.Project(tmpl, placeholders)); err != nil {
			return err
		}
	}
	return nil
}
