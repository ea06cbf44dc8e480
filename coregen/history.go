package coregen

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/projector"
	"github.com/ortelius/release-notes-updater/util"
)

var (
	releaseTableWithSdk = regexp.MustCompile(`## (Release notes|Releases)\s*\n\s*\|\s*Date\s*\|\s*Release\s*\|\s*SDK\s*\|\s*\n\s*\|\s*:--\s*\|\s*:--\s*\|\s*:--\s*\|\s*\n`)
	releaseTable        = regexp.MustCompile(`## (Release notes|Releases)\s*\n\s*\|\s*Date\s*\|\s*Release\s*\|\s*\n\s*\|\s*:--\s*\|\s*:--\s*\|\s*\n`)
	cveSection          = regexp.MustCompile(`## Which CVEs apply to my app\?\s*\n\s*Your app may be vulnerable to the following published security \[CVEs\]\(https://www\.cve\.org/\) if you are using an older version\.\s*\n`)
)

// insertAfter puts text right after the first match of re. ok is false when re does not match.
func insertAfter(content string, re *regexp.Regexp, text string) (string, bool) {
	loc := re.FindStringIndex(content)
	if loc == nil {
		return content, false
	}
	return content[:loc[1]] + text + content[loc[1]:], true
}

// SdkColumn links every SDK of the release to its page.
func SdkColumn(rel *model.Release, runtimeID, latestSdk string) string {
	var links []string
	for _, sdk := range rel.AllSdks() {
		if sdk.Version == latestSdk {
			links = append(links, fmt.Sprintf("[%s](./%s/%s.md)", sdk.Version, runtimeID, runtimeID))
		} else {
			links = append(links, fmt.Sprintf("[%s](./%s/%s.md)", sdk.Version, runtimeID, sdk.Version))
		}
	}
	return strings.Join(links, ", ")
}

// VersionReadme adds the release to the history table of release-notes/<channel>/README.md. A row
// that is already present is not added again.
func (g *Generator) VersionReadme(m *model.ReleaseManifest, runtimeID string) error {
	rel, err := releaseFor(m, runtimeID)
	if err != nil {
		return err
	}
	path := filepath.Join(channelDir(m.ChannelVersion), "README.md")
	content, ok := g.document(path)
	if !ok {
		g.Logger.Warnf("No reference %s, skipping release history update", path)
		return nil
	}

	release := util.FirstNonEmpty(rel.ReleaseVersion, runtimeID)
	if strings.Contains(content, fmt.Sprintf("](./%s/%s.md)", release, release)) {
		g.Logger.Infof("%s already lists %s", path, release)
		return g.saveDocument(path, content)
	}

	date := util.TableDate(util.FirstNonEmpty(rel.ReleaseDate, m.LatestReleaseDate))
	ctx := g.context(m, rel)
	withSdk := fmt.Sprintf("| %s | [%s](./%s/%s.md) | %s |\n", date, release, release, release, SdkColumn(rel, release, ctx.LatestSdk()))
	updated, found := insertAfter(content, releaseTableWithSdk, withSdk)
	if !found {
		updated, found = insertAfter(content, releaseTable, fmt.Sprintf("| %s | [%s](./%s/%s.md) |\n", date, release, release, release))
	}
	if !found {
		g.Logger.Warnf("No release table found in %s, leaving it unchanged", path)
	}
	return g.saveDocument(path, updated)
}

// CveEntries renders the bullet items of one release in cve.md.
func CveEntries(rel *model.Release, msrc *model.MsrcRecord) []string {
	var items []string
	for _, v := range projector.MergeCves(rel.CveList, msrc) {
		url := ""
		if len(v.References) > 0 {
			url = v.References[0].URL
		}
		switch {
		case v.Summary != "" && url != "":
			items = append(items, fmt.Sprintf("  - [%s](%s): %s", v.ID, url, v.Summary))
		case v.Summary != "":
			items = append(items, fmt.Sprintf("  - %s: %s", v.ID, v.Summary))
		case url != "":
			items = append(items, fmt.Sprintf("  - [%s](%s)", url, url))
		default:
			items = append(items, "  - "+v.ID)
		}
	}
	if len(items) == 0 {
		items = append(items, "  - No new CVEs.")
	}
	return items
}

// CveFile adds the release and its CVEs to release-notes/<channel>/cve.md. A release that is
// already listed is not added again.
func (g *Generator) CveFile(m *model.ReleaseManifest, runtimeID string) error {
	rel, err := releaseFor(m, runtimeID)
	if err != nil {
		return err
	}
	path := filepath.Join(channelDir(m.ChannelVersion), "cve.md")
	content, ok := g.document(path)
	if !ok {
		g.Logger.Warnf("No reference %s, skipping CVE history update", path)
		return nil
	}

	release := util.FirstNonEmpty(rel.ReleaseVersion, runtimeID)
	heading := fmt.Sprintf("- %s (", release)
	if strings.Contains(content, "\n"+heading) {
		g.Logger.Infof("%s already lists %s", path, release)
		return g.saveDocument(path, content)
	}

	entry := fmt.Sprintf("%s%s)\n%s\n", heading, util.ProseDate(util.FirstNonEmpty(rel.ReleaseDate, m.LatestReleaseDate)),
		strings.Join(CveEntries(rel, g.msrcFor(runtimeID)), "\n"))
	updated, found := insertAfter(content, cveSection, entry)
	if !found {
		g.Logger.Warnf("No CVE list section found in %s, leaving it unchanged", path)
	}
	return g.saveDocument(path, updated)
}
