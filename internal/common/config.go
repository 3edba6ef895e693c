package common

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the demonstration CLI's tunable set, loaded from YAML per
// ch10gate's cmd/ch10d config pattern.
type Config struct {
	BookendWidth    int         `yaml:"bookend_width"`
	PeakTolerance   float64     `yaml:"peak_tolerance"`
	PreferCentroids bool        `yaml:"prefer_centroids"`
	ProfileOnly     bool        `yaml:"profile_only"`
	Logs            LogRotation `yaml:"logs"`
}

// LoadConfig reads and parses a YAML config file. A missing file is not an
// error: the zero Config (library defaults) is returned.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
