// Package reference loads the small lookup tables that enrich generated documents: launch dates,
// announcement links, end-of-support data, unsupported channels and MSRC advisories.
package reference

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/ortelius/release-notes-updater/model"
	"github.com/ortelius/release-notes-updater/util"
	"go.uber.org/zap"
)

// File names read from the reference data directory.
const (
	LaunchDatesFile          = "launch-dates.json"
	AnnouncementLinksFile    = "announcement-links.json"
	EolAnnouncementLinksFile = "eol-announcement-links.json"
	EolDatesFile             = "eol-dates.json"
	UnsupportedVersionsFile  = "unsupported-versions.json"
)

// Load reads every table from dir. A missing or malformed file leaves its table empty and logs a
// warning; Load itself never fails.
func Load(dir string, logger *zap.SugaredLogger) *model.ReferenceConfiguration {
	cfg := model.NewReferenceConfiguration()

	loadTable(logger, filepath.Join(dir, LaunchDatesFile), &cfg.LaunchDates)
	loadTable(logger, filepath.Join(dir, AnnouncementLinksFile), &cfg.AnnouncementLinks)
	loadTable(logger, filepath.Join(dir, EolAnnouncementLinksFile), &cfg.EolAnnouncementLinks)
	loadTable(logger, filepath.Join(dir, EolDatesFile), &cfg.EolDates)
	loadTable(logger, filepath.Join(dir, UnsupportedVersionsFile), &cfg.UnsupportedVersions)

	logger.Infof("Loaded reference data from %s: %d launch dates, %d announcement links, %d EOL links, %d EOL dates, %d unsupported versions",
		dir, len(cfg.LaunchDates), len(cfg.AnnouncementLinks), len(cfg.EolAnnouncementLinks), len(cfg.EolDates), len(cfg.UnsupportedVersions))
	return cfg
}

func loadTable[T any](logger *zap.SugaredLogger, path string, table *map[string]T) {
	loaded := map[string]T{}
	if err := util.ReadJSON(path, &loaded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("Reference file %s not found, using an empty table", path)
		} else {
			logger.Warnf("Reference file %s could not be loaded, using an empty table: %v", path, err)
		}
		return
	}
	*table = loaded
}

// LoadMsrc reads the MSRC advisory table. Missing or malformed files yield an empty table.
func LoadMsrc(path string, logger *zap.SugaredLogger) model.MsrcTable {
	if path == "" {
		return nil
	}
	var table model.MsrcTable
	if err := util.ReadJSON(path, &table); err != nil {
		logger.Warnf("MSRC data %s not loaded, security sections fall back to manifest CVEs: %v", path, err)
		return nil
	}
	logger.Infof("Loaded MSRC advisories for %d runtime releases", len(table))
	return table
}
