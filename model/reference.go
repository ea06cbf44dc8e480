package model

// Defaults used when a reference table has no entry for a channel.
const (
	DefaultDate = "TBD"
	DefaultText = "TBA"
)

// UnsupportedVersion is the frozen state of a channel that is out of support.
type UnsupportedVersion struct {
	LatestRelease     string `json:"latest-release"`
	LatestReleaseDate string `json:"latest-release-date"`
	ReleaseType       string `json:"release-type"`
}

// ReferenceConfiguration holds the lookup tables loaded once per run. All tables are keyed
// by channel version ("8.0").
type ReferenceConfiguration struct {
	LaunchDates          map[string]string
	AnnouncementLinks    map[string]string
	EolAnnouncementLinks map[string]string
	EolDates             map[string]string
	UnsupportedVersions  map[string]UnsupportedVersion
}

// NewReferenceConfiguration returns a configuration with every table empty.
func NewReferenceConfiguration() *ReferenceConfiguration {
	return &ReferenceConfiguration{
		LaunchDates:          map[string]string{},
		AnnouncementLinks:    map[string]string{},
		EolAnnouncementLinks: map[string]string{},
		EolDates:             map[string]string{},
		UnsupportedVersions:  map[string]UnsupportedVersion{},
	}
}

// LaunchDate returns the GA date of a channel, or "TBD".
func (c *ReferenceConfiguration) LaunchDate(channel string) string {
	return lookup(c.LaunchDates, channel, DefaultDate)
}

// EolDate returns the end-of-support date of a channel, or "TBD".
func (c *ReferenceConfiguration) EolDate(channel string) string {
	return lookup(c.EolDates, channel, DefaultDate)
}

// AnnouncementLink returns the launch announcement URL of a channel, or "".
func (c *ReferenceConfiguration) AnnouncementLink(channel string) string {
	return lookup(c.AnnouncementLinks, channel, "")
}

// EolAnnouncementLink returns the end-of-support announcement URL of a channel, or "".
func (c *ReferenceConfiguration) EolAnnouncementLink(channel string) string {
	return lookup(c.EolAnnouncementLinks, channel, "")
}

// Unsupported returns the frozen record of an unsupported channel. Missing text fields
// resolve to "TBA" and a missing date to "TBD".
func (c *ReferenceConfiguration) Unsupported(channel string) (UnsupportedVersion, bool) {
	if c == nil {
		return UnsupportedVersion{}, false
	}
	u, ok := c.UnsupportedVersions[channel]
	if !ok {
		return UnsupportedVersion{}, false
	}
	if u.LatestRelease == "" {
		u.LatestRelease = DefaultText
	}
	if u.LatestReleaseDate == "" {
		u.LatestReleaseDate = DefaultDate
	}
	if u.ReleaseType == "" {
		u.ReleaseType = DefaultText
	}
	return u, true
}

func lookup(table map[string]string, key, defVal string) string {
	if v, ok := table[key]; ok && v != "" {
		return v
	}
	return defVal
}
