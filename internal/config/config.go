// Package config loads the run configuration from a YAML file, a .env file and RNU_* environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ortelius/release-notes-updater/util"
	"gopkg.in/yaml.v2"
)

// DefaultMetadataBaseURL is the public location of the per-channel release metadata.
const DefaultMetadataBaseURL = "https://builds.dotnet.microsoft.com/dotnet/release-metadata/"

// VersionBuild pairs a runtime identifier with the pipeline build that produced its manifest.
type VersionBuild struct {
	Runtime string `yaml:"runtime"`
	Build   string `yaml:"build"`
}

// Config is the process-level configuration surface.
type Config struct {
	Organization     string         `yaml:"organization"`
	Project          string         `yaml:"project"`
	ArtifactName     string         `yaml:"artifact_name"`
	AccessToken      string         `yaml:"access_token"`
	TemplateDir      string         `yaml:"template_dir"`
	DownloadDir      string         `yaml:"download_dir"`
	OutputDir        string         `yaml:"output_dir"`
	ReferenceDir     string         `yaml:"reference_dir"`
	ReferenceDataDir string         `yaml:"reference_data_dir"`
	BackupDir        string         `yaml:"backup_dir"`
	MsrcFile         string         `yaml:"msrc_file"`
	LogFile          string         `yaml:"log_file"`
	MetadataBaseURL  string         `yaml:"metadata_base_url"`
	Download         bool           `yaml:"download"`
	Sync             bool           `yaml:"sync"`
	Versions         []VersionBuild `yaml:"versions"`
}

// Default returns a configuration with every path rooted in the working directory.
func Default() *Config {
	return &Config{
		ArtifactName:     "release-manifests",
		TemplateDir:      "templates",
		DownloadDir:      "downloads",
		OutputDir:        "output",
		ReferenceDir:     "core",
		ReferenceDataDir: "reference-data",
		BackupDir:        "backups",
		MsrcFile:         filepath.Join("reference-data", "msrc.json"),
		LogFile:          "release-notes-updater.log",
		MetadataBaseURL:  DefaultMetadataBaseURL,
		Download:         true,
		Sync:             true,
	}
}

// Load reads path (optional), then .env, then environment overrides. A missing config file is
// not an error when path is empty.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Organization = util.GetEnvDefault("RNU_ORGANIZATION", c.Organization)
	c.Project = util.GetEnvDefault("RNU_PROJECT", c.Project)
	c.ArtifactName = util.GetEnvDefault("RNU_ARTIFACT_NAME", c.ArtifactName)
	c.AccessToken = util.GetEnvDefault("RNU_ACCESS_TOKEN", c.AccessToken)
	c.TemplateDir = util.GetEnvDefault("RNU_TEMPLATE_DIR", c.TemplateDir)
	c.DownloadDir = util.GetEnvDefault("RNU_DOWNLOAD_DIR", c.DownloadDir)
	c.OutputDir = util.GetEnvDefault("RNU_OUTPUT_DIR", c.OutputDir)
	c.ReferenceDir = util.GetEnvDefault("RNU_REFERENCE_DIR", c.ReferenceDir)
	c.ReferenceDataDir = util.GetEnvDefault("RNU_REFERENCE_DATA_DIR", c.ReferenceDataDir)
	c.BackupDir = util.GetEnvDefault("RNU_BACKUP_DIR", c.BackupDir)
	c.MsrcFile = util.GetEnvDefault("RNU_MSRC_FILE", c.MsrcFile)
	c.LogFile = util.GetEnvDefault("RNU_LOG_FILE", c.LogFile)
	c.MetadataBaseURL = util.GetEnvDefault("RNU_METADATA_BASE_URL", c.MetadataBaseURL)

	// RNU_VERSIONS=8.0.15:12345,9.0.4:12346 replaces the configured list
	if raw := util.GetEnvDefault("RNU_VERSIONS", ""); raw != "" {
		c.Versions = ParseVersions(raw)
	}
}

// ParseVersions parses "runtime:build" pairs separated by commas. The build part is optional.
func ParseVersions(raw string) []VersionBuild {
	var out []VersionBuild
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		runtime, build, _ := strings.Cut(item, ":")
		out = append(out, VersionBuild{Runtime: strings.TrimSpace(runtime), Build: strings.TrimSpace(build)})
	}
	return out
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if len(c.Versions) == 0 {
		return errors.New("no versions configured")
	}
	for _, v := range c.Versions {
		if util.IsEmpty(v.Runtime) {
			return errors.New("version entry with empty runtime id")
		}
	}
	if !strings.HasSuffix(c.MetadataBaseURL, "/") {
		c.MetadataBaseURL += "/"
	}
	return nil
}

// ValidateDownload checks the fields required to talk to the build pipeline.
func (c *Config) ValidateDownload() error {
	var missing []string
	if c.Organization == "" {
		missing = append(missing, "organization")
	}
	if c.Project == "" {
		missing = append(missing, "project")
	}
	if c.AccessToken == "" {
		missing = append(missing, "access_token")
	}
	for _, v := range c.Versions {
		if v.Build == "" {
			missing = append(missing, "build for "+v.Runtime)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("download requires: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RuntimeIDs returns the configured runtime identifiers in order.
func (c *Config) RuntimeIDs() []string {
	ids := make([]string, 0, len(c.Versions))
	for _, v := range c.Versions {
		ids = append(ids, v.Runtime)
	}
	return ids
}
