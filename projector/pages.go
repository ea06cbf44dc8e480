package projector

import (
	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/util"
)

// Download asset names linked from the install guides.
const (
	LinuxSdkAsset   = "dotnet-sdk-linux-x64.tar.gz"
	MacOSSdkAsset   = "dotnet-sdk-osx-x64.tar.gz"
	WindowsSdkAsset = "dotnet-sdk-win-x64.exe"
)

// ReleaseContext is the data a page is projected from.
type ReleaseContext struct {
	Manifest *model.ReleaseManifest
	Release  *model.Release
	Msrc     *model.MsrcRecord
}

// RuntimeVersion is the runtime documented by the page.
func (c ReleaseContext) RuntimeVersion() string {
	if c.Release != nil && c.Release.Runtime != nil && c.Release.Runtime.Version != "" {
		return c.Release.Runtime.Version
	}
	return c.Manifest.LatestRuntime
}

// LatestSdk is the primary SDK of the release, or the manifest's latest SDK.
func (c ReleaseContext) LatestSdk() string {
	if c.Release != nil && c.Release.Sdk != nil && c.Release.Sdk.Version != "" {
		return c.Release.Sdk.Version
	}
	return c.Manifest.LatestSdk
}

// ReleaseDate is the release date of the documented release.
func (c ReleaseContext) ReleaseDate() string {
	if c.Release != nil && c.Release.ReleaseDate != "" {
		return c.Release.ReleaseDate
	}
	return c.Manifest.LatestReleaseDate
}

// Sdks returns every SDK of the release, primary first.
func (c ReleaseContext) Sdks() []model.Sdk {
	if c.Release == nil {
		return nil
	}
	return c.Release.AllSdks()
}

// VisualStudioVersion is the minimum Visual Studio version for the runtime of this release.
func (c ReleaseContext) VisualStudioVersion() string {
	if c.Release == nil || c.Release.Runtime == nil || c.Release.Runtime.VsVersion == "" {
		return util.DefaultVisualStudioVersion
	}
	return util.MajorMinor(c.Release.Runtime.VsVersion)
}

// ChannelVisualStudioVersion is the lowest Visual Studio version required by any release of the
// channel.
func (c ReleaseContext) ChannelVisualStudioVersion() string {
	var values []string
	for _, rel := range c.Manifest.Releases {
		if rel.Runtime != nil {
			values = append(values, rel.Runtime.VsVersion)
		}
	}
	return util.MinVisualStudioVersion(values...)
}

// CSharpVersion is the C# language major version shipped with the release's SDK.
func (c ReleaseContext) CSharpVersion() string {
	rel := c.Release
	if rel == nil {
		return util.DefaultCSharpVersion
	}
	latest := c.Manifest.LatestSdk
	if latest != "" {
		for _, sdk := range rel.Sdks {
			if sdk.Version == latest && util.IsNotEmpty(sdk.CsharpVersion) {
				return util.MajorOnly(sdk.CsharpVersion)
			}
		}
	}
	if rel.Sdk != nil && util.IsNotEmpty(rel.Sdk.CsharpVersion) {
		return util.MajorOnly(rel.Sdk.CsharpVersion)
	}
	for _, sdk := range rel.Sdks {
		if util.IsNotEmpty(sdk.CsharpVersion) {
			return util.MajorOnly(sdk.CsharpVersion)
		}
	}
	return util.DefaultCSharpVersion
}

func (c ReleaseContext) runtimeFiles() []model.FileAsset {
	if c.Release == nil || c.Release.Runtime == nil {
		return nil
	}
	return c.Release.Runtime.Files
}

func (c ReleaseContext) aspFiles() []model.FileAsset {
	if c.Release == nil || c.Release.AspNetCoreRuntime == nil {
		return nil
	}
	return c.Release.AspNetCoreRuntime.Files
}

func (c ReleaseContext) desktopFiles() []model.FileAsset {
	if c.Release == nil || c.Release.WindowsDesktop == nil {
		return nil
	}
	return c.Release.WindowsDesktop.Files
}

// componentDefinitions renders a definition block, or nothing when the release lacks the component.
func componentDefinitions(present bool, label, version string, files []model.FileAsset) func(LinkSet) string {
	return func(used LinkSet) string {
		if !present {
			return ""
		}
		return FileDefinitions(label, version, files, used)
	}
}

// RuntimePlaceholders is the placeholder set of the runtime release page.
func RuntimePlaceholders(c ReleaseContext) []Placeholder {
	runtimeVersion := c.RuntimeVersion()
	latestSdk := c.LatestSdk()
	date := c.ReleaseDate()
	rel := c.Release

	var sdkFiles []model.FileAsset
	if rel != nil && rel.Sdk != nil {
		sdkFiles = rel.Sdk.Files
	}

	return []Placeholder{
		Text("{RUNTIME-VERSION}", runtimeVersion),
		Text("{LATEST-SDK}", latestSdk),
		Text("{ID-VERSION}", c.Manifest.ChannelVersion),
		Text("{HEADER-DATE}", util.HeaderDate(date)),
		Text("{BLOGPOST-DATE}", util.BlogSlugDate(date)),
		Text("{BLOG-DATE}", util.ProseDate(date)),
		Text("{VS-VERSION}", c.VisualStudioVersion()),
		Text("{CHANNEL-VS-VERSION}", c.ChannelVisualStudioVersion()),
		Text("{CSHARPSDK-VERSION}", c.CSharpVersion()),

		Section("SECTION-ADDEDSDK", func() string { return AddedSdkList(latestSdk, c.Sdks()) }),
		Section("SECTION-PACKAGES", func() string {
			if rel == nil {
				return ""
			}
			return PackagesTable(rel.Packages)
		}),
		Section("SECTION-MSRC", func() string { return SecuritySection(rel, c.Msrc) }),

		Definitions("SECTION-SDKS", func(used LinkSet) string {
			return SdkDefinitions(latestSdk, runtimeVersion, c.Sdks(), used)
		}),
		Definitions("SECTION-RUNTIME", componentDefinitions(rel != nil && rel.Runtime != nil, "Runtime", runtimeVersion, c.runtimeFiles())),
		Definitions("SECTION-WINDOWSDESKTOP", componentDefinitions(rel != nil && rel.WindowsDesktop != nil, "WindowsDesktop", runtimeVersion, c.desktopFiles())),
		Definitions("SECTION-ASP", componentDefinitions(rel != nil && rel.AspNetCoreRuntime != nil, "ASP", runtimeVersion, c.aspFiles())),
		Definitions("SECTION-LATESTSDK", componentDefinitions(rel != nil && rel.Sdk != nil, "SDK", latestSdk, sdkFiles)),
	}
}

// SdkPlaceholders is the placeholder set of the page for an additional SDK of a release.
func SdkPlaceholders(c ReleaseContext, sdk model.Sdk) []Placeholder {
	runtimeVersion := c.RuntimeVersion()
	rel := c.Release

	return []Placeholder{
		Text("{RUNTIME-VERSION}", runtimeVersion),
		Text("{LATEST-SDK}", c.LatestSdk()),
		Text("{ID-VERSION}", c.Manifest.ChannelVersion),
		Text("{SDK-VERSION}", sdk.Version),
		Text("{HEADER-DATE}", util.HeaderDate(c.ReleaseDate())),
		Text("{CSHARPSDK-VERSION}", util.FirstNonEmpty(util.MajorOnly(sdk.CsharpVersion), c.CSharpVersion())),

		Definitions("SECTION-RUNTIME", componentDefinitions(rel != nil && rel.Runtime != nil, "Runtime", runtimeVersion, c.runtimeFiles())),
		Definitions("SECTION-WINDOWSDESKTOP", componentDefinitions(rel != nil && rel.WindowsDesktop != nil, "WindowsDesktop", runtimeVersion, c.desktopFiles())),
		Definitions("SECTION-ASP", componentDefinitions(rel != nil && rel.AspNetCoreRuntime != nil, "ASP", runtimeVersion, c.aspFiles())),
		Definitions("SECTION-VERSIONSDK", componentDefinitions(true, "SDK", sdk.Version, sdk.Files)),
	}
}

// InstallPlaceholders is the placeholder set of the Linux, macOS and Windows install guides.
func InstallPlaceholders(c ReleaseContext) []Placeholder {
	var sdkFiles []model.FileAsset
	if c.Release != nil && c.Release.Sdk != nil {
		sdkFiles = c.Release.Sdk.Files
	}
	return []Placeholder{
		Text("{ID-VERSION}", c.Manifest.ChannelVersion),
		Text("{LATEST-SDK}", c.LatestSdk()),
		Text("{RUNTIME-VERSION}", c.RuntimeVersion()),
		Text("{LINUX-SDK-URL}", AssetURL(sdkFiles, LinuxSdkAsset)),
		Text("{MACOS-SDK-URL}", AssetURL(sdkFiles, MacOSSdkAsset)),
		Text("{WIN-SDK-URL}", AssetURL(sdkFiles, WindowsSdkAsset)),
	}
}

// AssetURL returns the download URL of the named file, or "".
func AssetURL(files []model.FileAsset, name string) string {
	for _, f := range files {
		if f.Name == name {
			return f.URL
		}
	}
	return ""
}
