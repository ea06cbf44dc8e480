// Package tables builds the release index tables of releases.md and release-notes/README.md: one
// table of supported channels and one of unsupported channels, each followed by the
// link-reference block its rows use.
package tables

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/util"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMalformedPreview is returned for preview releases not shaped like <version>-preview.<n>.
var ErrMalformedPreview = errors.New("malformed preview release")

const (
	supportedHeader   = "|  Version  | Release Date | Release type | Support phase | Latest Patch Version | End of Support |\n| :-- | :-- | :-- | :-- | :-- | :-- |"
	previewHeading    = "\n## Preview releases\n\n"
	unsupportedHeader = "|  Version  | Release Date | Release type | Latest Patch Version | End of Support |\n| :-- | :-- | :-- | :-- | :-- |"
)

// Channel is the state of one supported channel as read from its manifest.
type Channel struct {
	Version           string
	LatestRelease     string
	LatestReleaseDate string
	ReleaseType       string
	SupportPhase      string
}

// ChannelFromManifest extracts the table fields of a manifest.
func ChannelFromManifest(m *model.ReleaseManifest) Channel {
	return Channel{
		Version:           m.ChannelVersion,
		LatestRelease:     m.LatestRelease,
		LatestReleaseDate: m.LatestReleaseDate,
		ReleaseType:       m.ReleaseType,
		SupportPhase:      m.SupportPhase,
	}
}

// IsEOL reports whether the channel's support phase is end-of-life.
func (c Channel) IsEOL() bool {
	return strings.EqualFold(strings.TrimSpace(c.SupportPhase), "eol")
}

// Layout controls where rows link to.
type Layout struct {
	// ReadmeBase prefixes the channel README link ("release-notes/" or "./").
	ReadmeBase string
	// LinkBase prefixes release page links.
	LinkBase string
	// PoliciesLink is the target of the [policies] reference.
	PoliciesLink string
	// IncludePreviews renders preview channels into a separate preview table. Previews never
	// appear in the supported table.
	IncludePreviews bool
}

// ReleasesLayout is the layout of the repository root releases.md.
var ReleasesLayout = Layout{ReadmeBase: "release-notes/", LinkBase: "release-notes/", PoliciesLink: "release-policies.md", IncludePreviews: true}

// ReadmeLayout is the layout of release-notes/README.md.
var ReadmeLayout = Layout{ReadmeBase: "./", LinkBase: "./", PoliciesLink: "../release-policies.md"}

// Tables is the rendered output of a Builder.
type Tables struct {
	Supported     string
	Unsupported   string
	// Preview is the preview section including its heading, empty without preview rows.
	Preview       string
	MarkdownFiles string
}

// Builder renders tables from configured channels and the reference data.
type Builder struct {
	Reference *model.ReferenceConfiguration
	Layout    Layout
	Logger    *zap.SugaredLogger
}

// NewBuilder returns a Builder.
func NewBuilder(ref *model.ReferenceConfiguration, layout Layout, logger *zap.SugaredLogger) *Builder {
	return &Builder{Reference: ref, Layout: layout, Logger: logger}
}

// ReleaseLinkPath returns the page of a release below base. Previews must be named exactly
// <version>-preview.<n> and live under <channel>/preview/preview<n>/; everything else lives under
// <channel>/<release>/.
func ReleaseLinkPath(base, channel, release string) (string, error) {
	if util.IsPreview(release) {
		parts := strings.Split(release, "-")
		if len(parts) != 2 || parts[0] == "" || !strings.HasPrefix(parts[1], "preview.") {
			return "", fmt.Errorf("%w: %q", ErrMalformedPreview, release)
		}
		n := strings.TrimPrefix(parts[1], "preview.")
		if n == "" {
			return "", fmt.Errorf("%w: %q", ErrMalformedPreview, release)
		}
		return fmt.Sprintf("%s%s/preview/preview%s/%s.md", base, channel, n, release), nil
	}
	return fmt.Sprintf("%s%s/%s/%s.md", base, channel, release, release), nil
}

// SupportPhase formats a support phase for display ("active" -> "Active").
func SupportPhase(phase string) string {
	if util.IsEmpty(phase) {
		return model.DefaultText
	}
	return cases.Title(language.English).String(strings.TrimSpace(phase))
}

// ReleaseType formats a release type for display ("lts" -> "LTS").
func ReleaseType(releaseType string) string {
	if util.IsEmpty(releaseType) {
		return model.DefaultText
	}
	return strings.ToUpper(strings.TrimSpace(releaseType))
}

// DedupeChannels keeps the first entry of each channel version.
func DedupeChannels(channels []Channel) []Channel {
	seen := map[string]bool{}
	var out []Channel
	for _, c := range channels {
		if seen[c.Version] {
			continue
		}
		seen[c.Version] = true
		out = append(out, c)
	}
	return out
}

func sortChannels(channels []Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		return util.CompareChannels(channels[i].Version, channels[j].Version) > 0
	})
}

func linkOrText(text, url string) string {
	if url == "" {
		return text
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}

func productName(channel string, legacy bool) string {
	if legacy && util.IsLegacyChannel(channel) {
		return ".NET Core " + channel
	}
	return ".NET " + channel
}

// Build renders all tables. Supported rows come from channels, unsupported rows from the
// reference data.
func (b *Builder) Build(channels []Channel) Tables {
	var out Tables
	supported, previews := b.supportedRows(channels)
	out.Supported = supported
	out.Preview = previews
	out.Unsupported = b.unsupportedRows()
	out.MarkdownFiles = b.markdownFiles(channels)
	return out
}

func (b *Builder) supportedRows(channels []Channel) (string, string) {
	channels = DedupeChannels(channels)
	sortChannels(channels)

	var rows, previewRows, links, previewLinks []string
	for _, c := range channels {
		if c.IsEOL() {
			b.Logger.Infof("Channel %s is end of life, leaving it out of the supported table", c.Version)
			continue
		}
		preview := util.IsPreview(c.LatestRelease)
		if preview && !b.Layout.IncludePreviews {
			continue
		}

		path, err := ReleaseLinkPath(b.Layout.LinkBase, c.Version, c.LatestRelease)
		if err != nil {
			b.Logger.Errorf("Skipping channel %s: %v", c.Version, err)
			continue
		}

		row := fmt.Sprintf("| [%s](%s%s/README.md) | %s | [%s][policies] | %s | [%s][%s] | %s |",
			productName(c.Version, false), b.Layout.ReadmeBase, c.Version,
			linkOrText(b.Reference.LaunchDate(c.Version), b.Reference.AnnouncementLink(c.Version)),
			ReleaseType(c.ReleaseType),
			SupportPhase(c.SupportPhase),
			c.LatestRelease, c.LatestRelease,
			linkOrText(b.Reference.EolDate(c.Version), b.Reference.EolAnnouncementLink(c.Version)))
		link := fmt.Sprintf("[%s]: %s", c.LatestRelease, path)

		if preview {
			previewRows = append(previewRows, row)
			previewLinks = append(previewLinks, link)
		} else {
			rows = append(rows, row)
			links = append(links, link)
		}
	}

	supported := b.render(supportedHeader, rows, links, true)
	if len(previewRows) == 0 {
		return supported, ""
	}
	return supported, previewHeading + b.render(supportedHeader, previewRows, previewLinks, false)
}

func (b *Builder) unsupportedRows() string {
	versions := make([]string, 0, len(b.Reference.UnsupportedVersions))
	for v := range b.Reference.UnsupportedVersions {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	util.SortChannelsDesc(versions)

	var rows, links []string
	for _, v := range versions {
		u, _ := b.Reference.Unsupported(v)
		path, err := ReleaseLinkPath(b.Layout.LinkBase, v, u.LatestRelease)
		if err != nil {
			b.Logger.Errorf("Skipping unsupported channel %s: %v", v, err)
			continue
		}
		rows = append(rows, fmt.Sprintf("| [%s](%s%s/README.md) | %s | [%s][policies] | [%s][%s] | %s |",
			productName(v, true), b.Layout.ReadmeBase, v,
			linkOrText(b.Reference.LaunchDate(v), b.Reference.AnnouncementLink(v)),
			ReleaseType(u.ReleaseType),
			u.LatestRelease, u.LatestRelease,
			linkOrText(b.Reference.EolDate(v), b.Reference.EolAnnouncementLink(v))))
		links = append(links, fmt.Sprintf("[%s]: %s", u.LatestRelease, path))
	}
	return b.render(unsupportedHeader, rows, links, false)
}

func (b *Builder) render(header string, rows, links []string, policies bool) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, r := range rows {
		sb.WriteString("\n")
		sb.WriteString(r)
	}
	sb.WriteString("\n")
	for _, l := range links {
		sb.WriteString("\n")
		sb.WriteString(l)
	}
	if policies {
		sb.WriteString("\n[policies]: ")
		sb.WriteString(b.Layout.PoliciesLink)
	}
	return sb.String()
}

// markdownFiles lists the release page of every supported, non-preview channel.
func (b *Builder) markdownFiles(channels []Channel) string {
	channels = DedupeChannels(channels)
	sortChannels(channels)

	var items []string
	for _, c := range channels {
		if c.IsEOL() || util.IsPreview(c.LatestRelease) {
			continue
		}
		rel := fmt.Sprintf("%s/%s/%s.md", c.Version, c.LatestRelease, c.LatestRelease)
		items = append(items, fmt.Sprintf("* [%s](./%s)", rel, rel))
	}
	return strings.Join(items, "\n")
}
