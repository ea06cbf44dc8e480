package model

// MsrcRecord is the security advisory text published for one runtime release.
type MsrcRecord struct {
	RuntimeID string      `json:"RuntimeId"`
	Cves      []MsrcEntry `json:"Cves"`
}

// MsrcEntry is one advisory keyed by CVE id.
type MsrcEntry struct {
	CveID          string `json:"CveId"`
	CveTitle       string `json:"CveTitle"`
	CveDescription string `json:"CveDescription"`
}

// MsrcTable is the full set of advisories loaded for a run.
type MsrcTable []MsrcRecord

// ForRuntime returns the advisory record for runtimeID, or nil when none is published.
func (t MsrcTable) ForRuntime(runtimeID string) *MsrcRecord {
	for i := range t {
		if t[i].RuntimeID == runtimeID {
			return &t[i]
		}
	}
	return nil
}
