package coregen

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ortelius/release-notes-updater/internal/manifest"
	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/util"
	"github.com/package-url/packageurl-go"
)

// withCveIDs returns a copy of rel whose CVE references all carry an id.
func withCveIDs(rel model.Release) model.Release {
	cves := make([]model.CveReference, len(rel.CveList))
	for i, cve := range rel.CveList {
		if cve.CveID == "" {
			cve.CveID = util.ExtractCveID(cve.CveURL)
		}
		cves[i] = cve
	}
	rel.CveList = cves
	return rel
}

// channelReleases returns the working copy of a channel's releases.json.
func (g *Generator) channelReleases(channel string) *model.ReleaseManifest {
	if doc, ok := g.channels[channel]; ok {
		return doc
	}
	path := filepath.Join(g.ReferenceDir, channelDir(channel), "releases.json")
	doc, err := manifest.LoadFile(path)
	if err != nil {
		g.Logger.Warnf("Starting a new releases.json for %s: %v", channel, err)
		doc = &model.ReleaseManifest{ChannelVersion: channel}
	}
	g.channels[channel] = doc
	return doc
}

// ChannelReleasesJSON merges the release into release-notes/<channel>/releases.json: the channel
// summary fields follow the manifest, an existing release with the same version is replaced in
// place, and a new release goes to the front.
func (g *Generator) ChannelReleasesJSON(m *model.ReleaseManifest, runtimeID string) error {
	rel, err := releaseFor(m, runtimeID)
	if err != nil {
		return err
	}
	doc := g.channelReleases(m.ChannelVersion)

	doc.ChannelVersion = m.ChannelVersion
	doc.LatestRelease = m.LatestRelease
	doc.LatestReleaseDate = m.LatestReleaseDate
	doc.LatestRuntime = m.LatestRuntime
	doc.LatestSdk = m.LatestSdk
	doc.SupportPhase = m.SupportPhase
	doc.ReleaseType = m.ReleaseType
	doc.LifecyclePolicy = m.LifecyclePolicy
	if m.EolDate != "" {
		doc.EolDate = m.EolDate
	} else if eol := g.Reference.EolDate(m.ChannelVersion); eol != model.DefaultDate && doc.EolDate == "" {
		doc.EolDate = util.ISODate(eol)
	}

	updated := withCveIDs(*rel)
	replaced := false
	for i := range doc.Releases {
		if doc.Releases[i].ReleaseVersion == updated.ReleaseVersion {
			doc.Releases[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Releases = append([]model.Release{updated}, doc.Releases...)
	}

	return g.writeJSON(filepath.Join(channelDir(m.ChannelVersion), "releases.json"), doc)
}

// PackageURL returns the NuGet package URL of a package.
func PackageURL(p model.Package) string {
	return packageurl.NewPackageURL(packageurl.TypeNuget, "", p.Name, p.Version, nil, "").ToString()
}

// RuntimeReleaseJSON writes release-notes/<channel>/<runtime>/release.json.
func (g *Generator) RuntimeReleaseJSON(m *model.ReleaseManifest, runtimeID string) error {
	rel, err := releaseFor(m, runtimeID)
	if err != nil {
		return err
	}
	doc := model.RuntimeRelease{
		ChannelVersion: m.ChannelVersion,
		RuntimeVersion: runtimeID,
		Release:        withCveIDs(*rel),
	}
	for _, p := range rel.Packages {
		doc.Packages = append(doc.Packages, model.PackageReference{Name: p.Name, Version: p.Version, Purl: PackageURL(p)})
	}
	return g.writeJSON(filepath.Join(channelDir(m.ChannelVersion), runtimeID, "release.json"), doc)
}

// IndexEntry builds the release index row of a channel from its manifest.
func (g *Generator) IndexEntry(m *model.ReleaseManifest) model.ReleaseIndexEntry {
	product := ".NET"
	if util.IsLegacyChannel(m.ChannelVersion) {
		product = ".NET Core"
	}
	security := false
	if latest := m.LatestRuntimeRelease(); latest != nil {
		security = latest.Security
	}
	eol := m.EolDate
	if eol == "" {
		if ref := g.Reference.EolDate(m.ChannelVersion); ref != model.DefaultDate {
			eol = util.ISODate(ref)
		}
	}
	return model.ReleaseIndexEntry{
		ChannelVersion:    m.ChannelVersion,
		LatestRelease:     m.LatestRelease,
		LatestReleaseDate: m.LatestReleaseDate,
		Security:          security,
		LatestRuntime:     m.LatestRuntime,
		LatestSdk:         m.LatestSdk,
		Product:           product,
		SupportPhase:      m.SupportPhase,
		EolDate:           eol,
		ReleaseType:       m.ReleaseType,
		ReleasesJSON:      fmt.Sprintf("%s%s/releases.json", g.MetadataBaseURL, m.ChannelVersion),
		SupportedOSJSON:   fmt.Sprintf("%s%s/supported-os.json", g.MetadataBaseURL, m.ChannelVersion),
	}
}

// ReleasesIndex rebuilds release-notes/releases-index.json: entries of the reference index for
// channels not configured in this run are carried over, configured channels are replaced by
// fresh entries, and the result is ordered newest channel first.
func (g *Generator) ReleasesIndex(manifests []*model.ReleaseManifest) error {
	index := &model.ReleaseIndex{}

	var existing model.ReleaseIndex
	refPath := filepath.Join(g.ReferenceDir, "release-notes", "releases-index.json")
	if err := util.ReadJSON(refPath, &existing); err != nil {
		g.Logger.Warnf("Reference releases index not loaded, building from configured channels only: %v", err)
	}
	for _, e := range existing.ReleasesIndex {
		index.Upsert(e)
	}
	for _, m := range manifests {
		index.Upsert(g.IndexEntry(m))
	}

	sort.SliceStable(index.ReleasesIndex, func(i, j int) bool {
		return util.CompareChannels(index.ReleasesIndex[i].ChannelVersion, index.ReleasesIndex[j].ChannelVersion) > 0
	})
	return g.writeJSON(filepath.Join("release-notes", "releases-index.json"), index)
}

func (g *Generator) writeJSON(rel string, v any) error {
	data, err := util.MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", rel, err)
	}
	return g.write(rel, string(data))
}
