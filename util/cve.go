package util

import (
	"net/url"
	"regexp"
	"strings"
)

var cvePattern = regexp.MustCompile(`CVE-\d{4}-\d{4,}`)

// ExtractCveID derives a CVE id from a CVE URL. A CVE-yyyy-nnnn token anywhere in the URL wins;
// otherwise the last non-empty path segment is used.
func ExtractCveID(cveURL string) string {
	if id := cvePattern.FindString(cveURL); id != "" {
		return id
	}

	path := cveURL
	if u, err := url.Parse(cveURL); err == nil && u.Path != "" {
		path = u.Path
	}
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			return s
		}
	}
	return ""
}
