package coregen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	gen       *Generator
	templates string
	output    string
	reference string
}

func newFixture(t *testing.T) *fixture {
	root := t.TempDir()
	f := &fixture{
		templates: filepath.Join(root, "templates"),
		output:    filepath.Join(root, "output"),
		reference: filepath.Join(root, "core"),
	}
	ref := model.NewReferenceConfiguration()
	ref.EolDates["8.0"] = "2026-11-10"
	msrc := model.MsrcTable{{RuntimeID: "8.0.15", Cves: []model.MsrcEntry{
		{CveID: "CVE-2025-26682", CveTitle: "ASP.NET Core Denial of Service Vulnerability", CveDescription: "details"},
	}}}
	f.gen = New(Options{
		TemplateDir:     f.templates,
		OutputDir:       f.output,
		ReferenceDir:    f.reference,
		MetadataBaseURL: "https://builds.dotnet.microsoft.com/dotnet/release-metadata/",
	}, ref, msrc, zaptest.NewLogger(t).Sugar())
	return f
}

func (f *fixture) put(t *testing.T, dir, rel, body string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.output, rel))
	require.NoError(t, err)
	return string(data)
}

func sampleManifest() *model.ReleaseManifest {
	return &model.ReleaseManifest{
		ChannelVersion:    "8.0",
		LatestRelease:     "8.0.15",
		LatestReleaseDate: "2025-04-08",
		LatestRuntime:     "8.0.15",
		LatestSdk:         "8.0.408",
		SupportPhase:      "active",
		ReleaseType:       "lts",
		LifecyclePolicy:   "https://aka.ms/dotnetcoresupport",
		Releases: []model.Release{{
			ReleaseDate:    "2025-04-08",
			ReleaseVersion: "8.0.15",
			Security:       true,
			CveList: []model.CveReference{
				{CveURL: "https://www.cve.org/CVERecord?id=CVE-2025-26682"},
				{CveID: "CVE-2025-26646", CveURL: "https://www.cve.org/CVERecord?id=CVE-2025-26646"},
			},
			Runtime: &model.Runtime{Version: "8.0.15", VsVersion: "17.8.21"},
			Sdk: &model.Sdk{Version: "8.0.408", Files: []model.FileAsset{
				{Name: "dotnet-sdk-linux-x64.tar.gz", URL: "https://example.test/sdk-linux-x64.tar.gz"},
				{Name: "dotnet-sdk-osx-x64.tar.gz", URL: "https://example.test/sdk-osx-x64.tar.gz"},
				{Name: "dotnet-sdk-win-x64.exe", URL: "https://example.test/sdk-win-x64.exe"},
			}},
			Sdks:     []model.Sdk{{Version: "8.0.408"}, {Version: "8.0.312"}, {Version: "8.0.115"}},
			Packages: []model.Package{{Name: "Microsoft.NETCore.App.Ref", Version: "8.0.15"}},
		}},
	}
}

func TestRuntimeAndSdkPages(t *testing.T) {
	f := newFixture(t)
	f.put(t, f.templates, RuntimeTemplate, "# .NET {RUNTIME-VERSION} - {HEADER-DATE}\nSECTION-ADDEDSDK\nSECTION-SDKS\n")
	f.put(t, f.templates, SdkTemplate, "# .NET SDK {SDK-VERSION} for {RUNTIME-VERSION}\n")
	m := sampleManifest()

	require.NoError(t, f.gen.RuntimePage(m, "8.0.15"))
	page := f.read(t, "release-notes/8.0/8.0.15/8.0.15.md")
	assert.Contains(t, page, "# .NET 8.0.15 - April 08, 2025")
	assert.Contains(t, page, "[8.0.408]: 8.0.15.md\n[8.0.312]: 8.0.312.md\n[8.0.115]: 8.0.115.md")

	written, err := f.gen.SdkPages(m, "8.0.15")
	require.NoError(t, err)
	assert.Equal(t, []string{"8.0.312", "8.0.115"}, written)
	assert.Equal(t, "# .NET SDK 8.0.312 for 8.0.15\n", f.read(t, "release-notes/8.0/8.0.15/8.0.312.md"))
	assert.NoFileExists(t, filepath.Join(f.output, "release-notes/8.0/8.0.15/8.0.408.md"))

	assert.Error(t, f.gen.RuntimePage(m, "8.0.99"))
}

func TestMissingTemplateSkips(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.gen.RuntimePage(sampleManifest(), "8.0.15"))
	assert.NoDirExists(t, f.output)
}

func TestInstallPages(t *testing.T) {
	f := newFixture(t)
	f.put(t, f.templates, InstallLinux8Template, "linux8 {ID-VERSION} {LINUX-SDK-URL}")
	f.put(t, f.templates, InstallLinuxTemplate, "linux {ID-VERSION}")
	f.put(t, f.templates, InstallMacOSTemplate, "mac {MACOS-SDK-URL}")
	f.put(t, f.templates, InstallWinTemplate, "win {WIN-SDK-URL} {LATEST-SDK}")

	require.NoError(t, f.gen.InstallPages(sampleManifest(), "8.0.15"))
	assert.Equal(t, "linux8 8.0 https://example.test/sdk-linux-x64.tar.gz", f.read(t, "release-notes/8.0/install-linux.md"))
	assert.Equal(t, "mac https://example.test/sdk-osx-x64.tar.gz", f.read(t, "release-notes/8.0/install-macos.md"))
	assert.Equal(t, "win https://example.test/sdk-win-x64.exe 8.0.408", f.read(t, "release-notes/8.0/install-windows.md"))

	m := sampleManifest()
	m.ChannelVersion = "9.0"
	require.NoError(t, f.gen.InstallPages(m, "8.0.15"))
	assert.Equal(t, "linux 9.0", f.read(t, "release-notes/9.0/install-linux.md"))
}

const versionReadme = `# .NET 8.0 Releases

## Release notes

| Date | Release | SDK |
| :-- | :-- | :-- |
| 2025/03/11 | [8.0.14](./8.0.14/8.0.14.md) | [8.0.407](./8.0.14/8.0.14.md) |
`

func TestVersionReadmeInsertsRowOnce(t *testing.T) {
	f := newFixture(t)
	f.put(t, f.reference, "release-notes/8.0/README.md", versionReadme)
	m := sampleManifest()

	require.NoError(t, f.gen.VersionReadme(m, "8.0.15"))
	require.NoError(t, f.gen.VersionReadme(m, "8.0.15"))

	out := f.read(t, "release-notes/8.0/README.md")
	row := "| 2025/04/08 | [8.0.15](./8.0.15/8.0.15.md) | [8.0.408](./8.0.15/8.0.15.md), [8.0.312](./8.0.15/8.0.312.md), [8.0.115](./8.0.15/8.0.115.md) |\n"
	assert.Equal(t, 1, strings.Count(out, row))
	assert.Less(t, strings.Index(out, "8.0.15"), strings.Index(out, "8.0.14"))
}

func TestVersionReadmeWithoutSdkColumn(t *testing.T) {
	f := newFixture(t)
	f.put(t, f.reference, "release-notes/8.0/README.md", "## Releases\n\n| Date | Release |\n| :-- | :-- |\n")

	require.NoError(t, f.gen.VersionReadme(sampleManifest(), "8.0.15"))
	assert.Equal(t, "## Releases\n\n| Date | Release |\n| :-- | :-- |\n| 2025/04/08 | [8.0.15](./8.0.15/8.0.15.md) |\n", f.read(t, "release-notes/8.0/README.md"))
}

func TestVersionReadmeMissingReference(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.gen.VersionReadme(sampleManifest(), "8.0.15"))
	assert.NoFileExists(t, filepath.Join(f.output, "release-notes/8.0/README.md"))
}

const cveDoc = `# .NET 8.0 CVEs

## Which CVEs apply to my app?

Your app may be vulnerable to the following published security [CVEs](https://www.cve.org/) if you are using an older version.

- 8.0.14 (March 2025)
  - No new CVEs.
`

func TestCveFile(t *testing.T) {
	f := newFixture(t)
	f.put(t, f.reference, "release-notes/8.0/cve.md", cveDoc)

	require.NoError(t, f.gen.CveFile(sampleManifest(), "8.0.15"))
	require.NoError(t, f.gen.CveFile(sampleManifest(), "8.0.15"))

	out := f.read(t, "release-notes/8.0/cve.md")
	entry := "- 8.0.15 (April 2025)\n" +
		"  - [CVE-2025-26682](https://www.cve.org/CVERecord?id=CVE-2025-26682): ASP.NET Core Denial of Service Vulnerability\n" +
		"  - [https://www.cve.org/CVERecord?id=CVE-2025-26646](https://www.cve.org/CVERecord?id=CVE-2025-26646)\n"
	assert.Equal(t, 1, strings.Count(out, entry))
	assert.Less(t, strings.Index(out, "- 8.0.15"), strings.Index(out, "- 8.0.14"))
}

func TestCveEntriesWithoutCves(t *testing.T) {
	assert.Equal(t, []string{"  - No new CVEs."}, CveEntries(&model.Release{}, nil))
}

func TestChannelReleasesJSON(t *testing.T) {
	f := newFixture(t)
	existing := model.ReleaseManifest{
		ChannelVersion: "8.0",
		LatestRelease:  "8.0.14",
		Releases: []model.Release{
			{ReleaseVersion: "8.0.15", ReleaseNotes: "stale"},
			{ReleaseVersion: "8.0.14"},
		},
	}
	data, err := json.Marshal(existing)
	require.NoError(t, err)
	f.put(t, f.reference, "release-notes/8.0/releases.json", string(data))

	require.NoError(t, f.gen.ChannelReleasesJSON(sampleManifest(), "8.0.15"))

	var got model.ReleaseManifest
	require.NoError(t, json.Unmarshal([]byte(f.read(t, "release-notes/8.0/releases.json")), &got))
	assert.Equal(t, "8.0.15", got.LatestRelease)
	assert.Equal(t, "2026-11-10", got.EolDate)
	require.Len(t, got.Releases, 2)
	assert.Equal(t, "8.0.15", got.Releases[0].ReleaseVersion)
	assert.Equal(t, "", got.Releases[0].ReleaseNotes)
	assert.Equal(t, "CVE-2025-26682", got.Releases[0].CveList[0].CveID)
}

func TestChannelReleasesJSONNewReleaseGoesFirst(t *testing.T) {
	f := newFixture(t)
	m := sampleManifest()
	require.NoError(t, f.gen.ChannelReleasesJSON(m, "8.0.15"))

	next := sampleManifest()
	next.LatestRelease = "8.0.16"
	next.Releases[0].ReleaseVersion = "8.0.16"
	next.Releases[0].Runtime = &model.Runtime{Version: "8.0.16"}
	require.NoError(t, f.gen.ChannelReleasesJSON(next, "8.0.16"))

	var got model.ReleaseManifest
	require.NoError(t, json.Unmarshal([]byte(f.read(t, "release-notes/8.0/releases.json")), &got))
	versions := []string{}
	for _, r := range got.Releases {
		versions = append(versions, r.ReleaseVersion)
	}
	assert.Equal(t, []string{"8.0.16", "8.0.15"}, versions)
}

func TestRuntimeReleaseJSON(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.gen.RuntimeReleaseJSON(sampleManifest(), "8.0.15"))

	var got model.RuntimeRelease
	require.NoError(t, json.Unmarshal([]byte(f.read(t, "release-notes/8.0/8.0.15/release.json")), &got))
	want := []model.PackageReference{{Name: "Microsoft.NETCore.App.Ref", Version: "8.0.15", Purl: "pkg:nuget/Microsoft.NETCore.App.Ref@8.0.15"}}
	if diff := cmp.Diff(want, got.Packages); diff != "" {
		t.Errorf("package references mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "8.0", got.ChannelVersion)
}

func TestReleasesIndex(t *testing.T) {
	f := newFixture(t)
	existing := model.ReleaseIndex{ReleasesIndex: []model.ReleaseIndexEntry{
		{ChannelVersion: "8.0", LatestRelease: "8.0.14"},
		{ChannelVersion: "3.1", LatestRelease: "3.1.32", Product: ".NET Core"},
		{ChannelVersion: "9.0", LatestRelease: "9.0.3"},
	}}
	data, err := json.Marshal(existing)
	require.NoError(t, err)
	f.put(t, f.reference, "release-notes/releases-index.json", string(data))

	require.NoError(t, f.gen.ReleasesIndex([]*model.ReleaseManifest{sampleManifest()}))

	var got model.ReleaseIndex
	require.NoError(t, json.Unmarshal([]byte(f.read(t, "release-notes/releases-index.json")), &got))
	channels := []string{}
	for _, e := range got.ReleasesIndex {
		channels = append(channels, e.ChannelVersion)
	}
	assert.Equal(t, []string{"9.0", "8.0", "3.1"}, channels)

	entry := got.Find("8.0")
	require.NotNil(t, entry)
	want := model.ReleaseIndexEntry{
		ChannelVersion:    "8.0",
		LatestRelease:     "8.0.15",
		LatestReleaseDate: "2025-04-08",
		Security:          true,
		LatestRuntime:     "8.0.15",
		LatestSdk:         "8.0.408",
		Product:           ".NET",
		SupportPhase:      "active",
		EolDate:           "2026-11-10",
		ReleaseType:       "lts",
		ReleasesJSON:      "https://builds.dotnet.microsoft.com/dotnet/release-metadata/8.0/releases.json",
		SupportedOSJSON:   "https://builds.dotnet.microsoft.com/dotnet/release-metadata/8.0/supported-os.json",
	}
	if diff := cmp.Diff(want, *entry); diff != "" {
		t.Errorf("index entry mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexPages(t *testing.T) {
	f := newFixture(t)
	f.put(t, f.templates, ReleasesTemplate, "# Releases\n\nSECTION-SUPPORTED\nSECTION-PREVIEW\n\nSECTION-UNSUPPORTED\n")
	f.put(t, f.templates, ReleaseNotesTemplate, "SECTION-RELEASE\n\nSECTION-MARKDOWNFILES\n")
	f.gen.Reference.UnsupportedVersions["7.0"] = model.UnsupportedVersion{LatestRelease: "7.0.20", ReleaseType: "sts"}

	channels := []tables.Channel{tables.ChannelFromManifest(sampleManifest())}
	require.NoError(t, f.gen.ReleasesMarkdown(channels))
	require.NoError(t, f.gen.ReleaseNotesReadme(channels))

	releases := f.read(t, "releases.md")
	assert.Contains(t, releases, "| [.NET 8.0](release-notes/8.0/README.md) |")
	assert.Contains(t, releases, "| [.NET 7.0](release-notes/7.0/README.md) |")
	assert.NotContains(t, releases, "SECTION-")
	assert.NotContains(t, releases, "Preview releases")

	readme := f.read(t, "release-notes/README.md")
	assert.Contains(t, readme, "| [.NET 8.0](./8.0/README.md) |")
	assert.Contains(t, readme, "* [8.0/8.0.15/8.0.15.md](./8.0/8.0.15/8.0.15.md)")
	assert.NotContains(t, readme, "7.0")
}

func TestReleasesMarkdownPreviewSection(t *testing.T) {
	f := newFixture(t)
	f.put(t, f.templates, ReleasesTemplate, "SECTION-SUPPORTED\nSECTION-PREVIEW\n\nSECTION-UNSUPPORTED\n")

	channels := []tables.Channel{
		tables.ChannelFromManifest(sampleManifest()),
		{Version: "10.0", LatestRelease: "10.0.0-preview.3", LatestReleaseDate: "2025-04-10", ReleaseType: "lts", SupportPhase: "preview"},
	}
	require.NoError(t, f.gen.ReleasesMarkdown(channels))

	releases := f.read(t, "releases.md")
	assert.Equal(t, 1, strings.Count(releases, "## Preview releases"))
	assert.Contains(t, releases, "[policies]: release-policies.md\n\n## Preview releases\n\n|  Version  |")
	assert.Contains(t, releases, "[10.0.0-preview.3]: release-notes/10.0/preview/preview3/10.0.0-preview.3.md")
}
