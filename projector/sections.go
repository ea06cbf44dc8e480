package projector

import (
	"fmt"
	"strings"

	"github.com/ortelius/release-notes-updater/model"
)

// AdvisoryIndexURL lists the published Microsoft Security Advisories.
const AdvisoryIndexURL = "https://github.com/dotnet/announcements/issues?q=is%3Aissue%20state%3Aopen%20%20Microsoft%20Security%20Advisory"

// AddedSdkList renders the bullet list of SDKs shipped with a release, latest SDK first. Each item
// is a reference-style link named after the SDK version.
func AddedSdkList(latestSdk string, sdks []model.Sdk) string {
	if len(sdks) == 0 {
		return ""
	}
	var b strings.Builder
	if latestSdk != "" {
		fmt.Fprintf(&b, "\n* [%s][%s]", latestSdk, latestSdk)
	}
	for _, sdk := range sdks {
		if sdk.Version == latestSdk {
			continue
		}
		fmt.Fprintf(&b, "\n* [%s][%s]", sdk.Version, sdk.Version)
	}
	return b.String()
}

// SdkDefinitions maps each used SDK link to its page. The latest SDK is documented on the runtime
// page itself, even when it is missing from sdks; every other SDK has a page named after its
// version.
func SdkDefinitions(latestSdk, runtimeVersion string, sdks []model.Sdk, used LinkSet) string {
	if len(sdks) == 0 {
		return ""
	}
	var lines []string
	if latestSdk != "" && used.Has(latestSdk) {
		lines = append(lines, fmt.Sprintf("[%s]: %s.md", latestSdk, runtimeVersion))
	}
	for _, sdk := range sdks {
		if sdk.Version == latestSdk || !used.Has(sdk.Version) {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s]: %s.md", sdk.Version, sdk.Version))
	}
	return "\n" + strings.Join(lines, "\n")
}

// FileDefinitions renders a labelled block of link definitions for the used file assets.
func FileDefinitions(label, version string, files []model.FileAsset, used LinkSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[//]: # ( %s %s)", label, version)
	for _, f := range files {
		if f.Name == "" || !used.Has(f.Name) {
			continue
		}
		fmt.Fprintf(&b, "\n[%s]: %s", f.Name, f.URL)
	}
	return b.String()
}

// PackagesTable renders the NuGet packages of a release as a markdown table.
func PackagesTable(packages []model.Package) string {
	if len(packages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Packages\n| Name | Version |\n| ---- | ------- |\n")
	for _, p := range packages {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Name, p.Version)
	}
	return b.String()
}

// SecuritySection renders the security notice of a release. Non-security releases get nothing.
// With an MSRC record every merged CVE becomes a titled advisory; without one the manifest CVE
// URLs are listed; with neither a generic notice is emitted.
func SecuritySection(release *model.Release, msrc *model.MsrcRecord) string {
	if release == nil || !release.Security {
		return ""
	}

	if msrc != nil && len(msrc.Cves) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "This release includes security and non-security fixes. Details on security fixes below can be found in the [Microsoft Security Advisory](%s):\n\n", AdvisoryIndexURL)
		advisories := make([]string, 0)
		for _, v := range MergeCves(release.CveList, msrc) {
			advisories = append(advisories, advisory(v.ID, v.Summary, v.Details, firstURL(v.References)))
		}
		b.WriteString(strings.Join(advisories, "\n\n"))
		return b.String()
	}

	var urls []string
	for _, cve := range release.CveList {
		if cve.CveURL != "" {
			urls = append(urls, cve.CveURL)
		}
	}
	if len(urls) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "### Security\n\nThis release includes security fixes. Details on security fixes below can be found in the [Microsoft Security Advisory](%s):\n\n", AdvisoryIndexURL)
		for _, u := range urls {
			fmt.Fprintf(&b, "* [%s](%s)\n", u, u)
		}
		return b.String()
	}

	return fmt.Sprintf("### Security\n\nThis release includes security fixes. Details can be found in the [Microsoft Security Advisory](%s).", AdvisoryIndexURL)
}

func advisory(id, title, description, url string) string {
	if title == "" {
		heading := "### Microsoft Security Advisory " + id
		if url != "" {
			return fmt.Sprintf("%s\n\nSee [%s](%s) for details.", heading, id, url)
		}
		return heading
	}
	out := fmt.Sprintf("### Microsoft Security Advisory %s | %s", id, title)
	if description != "" {
		out += "\n\n" + description
	}
	return out
}
