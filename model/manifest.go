// Package model - ReleaseManifest defines the structs parsed from the per-channel release manifests
// published by the build pipeline (releases-json-CDN-<runtime>.json) and the channel releases.json
// documents kept in the reference directory.
package model

// ReleaseManifest is the root of a channel release manifest.
type ReleaseManifest struct {
	ChannelVersion    string    `json:"channel-version"`
	LatestRelease     string    `json:"latest-release"`
	LatestReleaseDate string    `json:"latest-release-date"`
	LatestRuntime     string    `json:"latest-runtime"`
	LatestSdk         string    `json:"latest-sdk"`
	SupportPhase      string    `json:"support-phase"`
	ReleaseType       string    `json:"release-type"`
	EolDate           string    `json:"eol-date,omitempty"`
	LifecyclePolicy   string    `json:"lifecycle-policy"`
	Releases          []Release `json:"releases"`
}

// Release is one point release of a channel.
type Release struct {
	ReleaseDate       string             `json:"release-date"`
	ReleaseVersion    string             `json:"release-version"`
	Security          bool               `json:"security"`
	CveList           []CveReference     `json:"cve-list"`
	ReleaseNotes      string             `json:"release-notes"`
	Runtime           *Runtime           `json:"runtime,omitempty"`
	Sdk               *Sdk               `json:"sdk,omitempty"`
	Sdks              []Sdk              `json:"sdks,omitempty"`
	AspNetCoreRuntime *AspNetCoreRuntime `json:"aspnetcore-runtime,omitempty"`
	WindowsDesktop    *WindowsDesktop    `json:"windowsdesktop,omitempty"`
	Packages          []Package          `json:"packages,omitempty"`
}

// Runtime is the .NET runtime component of a release.
type Runtime struct {
	Version        string      `json:"version"`
	VersionDisplay string      `json:"version-display,omitempty"`
	VsVersion      string      `json:"vs-version,omitempty"`
	VsMacVersion   string      `json:"vs-mac-version,omitempty"`
	Files          []FileAsset `json:"files,omitempty"`
}

// Sdk is an SDK shipped with a release. A release has one primary SDK and may list
// additional feature-band SDKs under "sdks".
type Sdk struct {
	Version        string      `json:"version"`
	VersionDisplay string      `json:"version-display,omitempty"`
	RuntimeVersion string      `json:"runtime-version,omitempty"`
	VsVersion      string      `json:"vs-version,omitempty"`
	VsMacVersion   string      `json:"vs-mac-version,omitempty"`
	VsSupport      string      `json:"vs-support,omitempty"`
	VsMacSupport   string      `json:"vs-mac-support,omitempty"`
	CsharpVersion  string      `json:"csharp-version,omitempty"`
	FsharpVersion  string      `json:"fsharp-version,omitempty"`
	VbVersion      string      `json:"vb-version,omitempty"`
	Files          []FileAsset `json:"files,omitempty"`
}

// AspNetCoreRuntime is the ASP.NET Core runtime component of a release.
type AspNetCoreRuntime struct {
	Version                 string      `json:"version"`
	VersionDisplay          string      `json:"version-display,omitempty"`
	VersionAspNetCoreModule []string    `json:"version-aspnetcoremodule,omitempty"`
	VsVersion               string      `json:"vs-version,omitempty"`
	Files                   []FileAsset `json:"files,omitempty"`
}

// WindowsDesktop is the Windows Desktop runtime component of a release.
type WindowsDesktop struct {
	Version        string      `json:"version"`
	VersionDisplay string      `json:"version-display,omitempty"`
	Files          []FileAsset `json:"files,omitempty"`
}

// FileAsset is a downloadable file. Name doubles as the markdown link-reference name.
type FileAsset struct {
	Name  string `json:"name"`
	Rid   string `json:"rid,omitempty"`
	URL   string `json:"url"`
	Hash  string `json:"hash,omitempty"`
	Akams string `json:"akams,omitempty"`
}

// Package is a NuGet package name/version pair shipped with a release.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CveReference points at a published CVE. CveID is optional in older manifests and is
// then derived from CveURL.
type CveReference struct {
	CveID  string `json:"cve-id,omitempty"`
	CveURL string `json:"cve-url"`
}

// ReleaseForRuntime returns the release whose runtime version equals runtimeID, or nil.
func (m *ReleaseManifest) ReleaseForRuntime(runtimeID string) *Release {
	if m == nil {
		return nil
	}
	for i := range m.Releases {
		if m.Releases[i].Runtime != nil && m.Releases[i].Runtime.Version == runtimeID {
			return &m.Releases[i]
		}
	}
	return nil
}

// LatestRuntimeRelease returns the release matching the manifest's latest runtime, or nil.
func (m *ReleaseManifest) LatestRuntimeRelease() *Release {
	if m == nil {
		return nil
	}
	return m.ReleaseForRuntime(m.LatestRuntime)
}

// AllSdks returns the primary SDK followed by every additional SDK not already listed.
func (r *Release) AllSdks() []Sdk {
	var sdks []Sdk
	seen := map[string]bool{}
	if r.Sdk != nil && r.Sdk.Version != "" {
		sdks = append(sdks, *r.Sdk)
		seen[r.Sdk.Version] = true
	}
	for _, s := range r.Sdks {
		if seen[s.Version] {
			continue
		}
		seen[s.Version] = true
		sdks = append(sdks, s)
	}
	return sdks
}
