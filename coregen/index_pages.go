package coregen

import (
	"path/filepath"

	"github.com/ortelius/release-notes-updater/projector"
	"github.com/ortelius/release-notes-updater/tables"
)

// ReleasesMarkdown writes the repository root releases.md with the supported, preview and
// unsupported channel tables.
func (g *Generator) ReleasesMarkdown(channels []tables.Channel) error {
	tmpl, ok := g.template(ReleasesTemplate)
	if !ok {
		return nil
	}
	t := tables.NewBuilder(g.Reference, tables.ReleasesLayout, g.Logger).Build(channels)
	out := projector.Project(tmpl, []projector.Placeholder{
		projector.Section("SECTION-SUPPORTED", func() string { return t.Supported }),
		projector.Section("SECTION-PREVIEW", func() string { return t.Preview }),
		projector.Section("SECTION-UNSUPPORTED", func() string { return t.Unsupported }),
	})
	return g.write("releases.md", out)
}

// ReleaseNotesReadme writes release-notes/README.md with the supported channel table and the list
// of latest release pages.
func (g *Generator) ReleaseNotesReadme(channels []tables.Channel) error {
	tmpl, ok := g.template(ReleaseNotesTemplate)
	if !ok {
		return nil
	}
	t := tables.NewBuilder(g.Reference, tables.ReadmeLayout, g.Logger).Build(channels)
	out := projector.Project(tmpl, []projector.Placeholder{
		projector.Section("SECTION-RELEASE", func() string { return t.Supported }),
		projector.Section("SECTION-MARKDOWNFILES", func() string { return t.MarkdownFiles }),
	})
	return g.write(filepath.Join("release-notes", "README.md"), out)
}
