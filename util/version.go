package util

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultVisualStudioVersion is used when no release declares a Visual Studio version.
const DefaultVisualStudioVersion = "17.0"

// DefaultCSharpVersion is used when no SDK declares a C# version.
const DefaultCSharpVersion = "12"

var leadingVersion = regexp.MustCompile(`^\s*(\d+(\.\d+)?)`)

// ChannelVersion returns the major.minor channel of a runtime identifier ("8.0.15" -> "8.0").
// A single-component identifier is returned unchanged.
func ChannelVersion(runtimeID string) string {
	parts := strings.Split(runtimeID, ".")
	if len(parts) < 2 {
		log.Printf("WARNING: runtime id %q has no minor component, using it as the channel version", runtimeID)
		return runtimeID
	}
	return parts[0] + "." + parts[1]
}

// MajorMinor keeps the text up to, but not including, the second dot ("17.8.21" -> "17.8").
func MajorMinor(version string) string {
	first := strings.Index(version, ".")
	if first < 0 {
		return version
	}
	second := strings.Index(version[first+1:], ".")
	if second < 0 {
		return version
	}
	return version[:first+1+second]
}

// MajorOnly keeps the text before the first dot ("12.0" -> "12").
func MajorOnly(version string) string {
	if i := strings.Index(version, "."); i > 0 {
		return version[:i]
	}
	return version
}

// ParseChannel parses the leading numeric major[.minor] token of a version string.
// Anything after the token is ignored. Returns nil when there is no numeric prefix.
func ParseChannel(version string) *semver.Version {
	m := leadingVersion.FindStringSubmatch(version)
	if m == nil {
		return nil
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil
	}
	return v
}

// CompareChannels orders two channel versions numerically. Unparsable versions compare as zero.
func CompareChannels(a, b string) int {
	va, vb := ParseChannel(a), ParseChannel(b)
	zero := semver.MustParse("0.0")
	if va == nil {
		va = zero
	}
	if vb == nil {
		vb = zero
	}
	return va.Compare(vb)
}

// SortChannelsDesc sorts channel versions newest first. The sort is stable so equal
// versions keep their input order.
func SortChannelsDesc(channels []string) {
	sort.SliceStable(channels, func(i, j int) bool {
		return CompareChannels(channels[i], channels[j]) > 0
	})
}

// MinVisualStudioVersion returns the smallest major.minor Visual Studio version found across the
// given values. Each value may be a comma separated list. Blank and unparsable entries are
// skipped; when nothing usable is found the result is "17.0".
func MinVisualStudioVersion(values ...string) string {
	var minVer *semver.Version
	result := DefaultVisualStudioVersion

	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			mm := MajorMinor(part)
			v, err := semver.NewVersion(mm)
			if err != nil {
				log.Printf("WARNING: ignoring unparsable Visual Studio version %q", part)
				continue
			}
			if minVer == nil || v.LessThan(minVer) {
				minVer = v
				result = mm
			}
		}
	}
	return result
}

// IsPreview reports whether a release version is a preview build. The match is case-sensitive.
func IsPreview(release string) bool {
	return strings.Contains(release, "preview")
}

// IsLegacyChannel reports whether a channel predates the ".NET 5" naming (1.0 through 3.1).
func IsLegacyChannel(channel string) bool {
	v := ParseChannel(channel)
	return v != nil && v.Major() < 5
}
