package projector

import (
	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/util"
)

// MergeCves combines the CVEs listed in a release manifest with the MSRC advisories published for
// the same runtime. Manifest CVEs come first in manifest order, followed by advisories the
// manifest does not list. Each CVE id appears once; MSRC title and description win over the bare
// manifest entry.
func MergeCves(cves []model.CveReference, msrc *model.MsrcRecord) []models.Vulnerability {
	var merged []models.Vulnerability
	index := map[string]int{}

	for _, cve := range cves {
		id := cve.CveID
		if id == "" {
			id = util.ExtractCveID(cve.CveURL)
		}
		if id == "" {
			continue
		}
		if _, seen := index[id]; seen {
			continue
		}
		vuln := models.Vulnerability{ID: id}
		if cve.CveURL != "" {
			vuln.References = []models.Reference{{Type: models.ReferenceAdvisory, URL: cve.CveURL}}
		}
		index[id] = len(merged)
		merged = append(merged, vuln)
	}

	if msrc == nil {
		return merged
	}

	for _, entry := range msrc.Cves {
		if entry.CveID == "" {
			continue
		}
		if i, seen := index[entry.CveID]; seen {
			if entry.CveTitle != "" {
				merged[i].Summary = entry.CveTitle
			}
			if entry.CveDescription != "" {
				merged[i].Details = entry.CveDescription
			}
			continue
		}
		index[entry.CveID] = len(merged)
		merged = append(merged, models.Vulnerability{
			ID:      entry.CveID,
			Summary: entry.CveTitle,
			Details: entry.CveDescription,
		})
	}
	return merged
}

// CveIDs returns the ids of the merged CVE list in order.
func CveIDs(vulns []models.Vulnerability) []string {
	ids := make([]string, 0, len(vulns))
	for _, v := range vulns {
		ids = append(ids, v.ID)
	}
	return ids
}

func firstURL(refs []models.Reference) string {
	for _, r := range refs {
		if r.URL != "" {
			return r.URL
		}
	}
	return ""
}
