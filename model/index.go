package model

// ReleaseIndex is the aggregate releases-index.json document.
type ReleaseIndex struct {
	ReleasesIndex []ReleaseIndexEntry `json:"releases-index"`
}

// ReleaseIndexEntry is one channel row of the release index. ChannelVersion is the identity key.
type ReleaseIndexEntry struct {
	ChannelVersion    string `json:"channel-version"`
	LatestRelease     string `json:"latest-release"`
	LatestReleaseDate string `json:"latest-release-date"`
	Security          bool   `json:"security"`
	LatestRuntime     string `json:"latest-runtime"`
	LatestSdk         string `json:"latest-sdk"`
	Product           string `json:"product"`
	SupportPhase      string `json:"support-phase"`
	EolDate           string `json:"eol-date"`
	ReleaseType       string `json:"release-type"`
	ReleasesJSON      string `json:"releases.json"`
	SupportedOSJSON   string `json:"supported-os.json"`
}

// Upsert replaces the entry with the same channel version in place, or appends it.
func (idx *ReleaseIndex) Upsert(entry ReleaseIndexEntry) {
	for i := range idx.ReleasesIndex {
		if idx.ReleasesIndex[i].ChannelVersion == entry.ChannelVersion {
			idx.ReleasesIndex[i] = entry
			return
		}
	}
	idx.ReleasesIndex = append(idx.ReleasesIndex, entry)
}

// Find returns the entry for a channel, or nil.
func (idx *ReleaseIndex) Find(channel string) *ReleaseIndexEntry {
	for i := range idx.ReleasesIndex {
		if idx.ReleasesIndex[i].ChannelVersion == channel {
			return &idx.ReleasesIndex[i]
		}
	}
	return nil
}

// RuntimeRelease is the per-runtime release.json document: the release annotated with the
// channel it belongs to and a package URL for every NuGet package.
type RuntimeRelease struct {
	ChannelVersion string             `json:"channel-version"`
	RuntimeVersion string             `json:"runtime-version"`
	Release        Release            `json:"release"`
	Packages       []PackageReference `json:"package-references,omitempty"`
}

// PackageReference is a shipped package identified by its package URL.
type PackageReference struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Purl    string `json:"purl"`
}
