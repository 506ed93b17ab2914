package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/quake-wall/internal/domain"
)

// DisplayFile is the optional YAML layout of a wall installation:
//
//	region: [[30, 128], [46, 146]]
//	timezones:
//	  - name: Tokyo
//	    zone: Asia/Tokyo
type DisplayFile struct {
	Region    *[2][2]float64    `yaml:"region"`
	Timezones []domain.Timezone `yaml:"timezones"`
}

// LoadDisplayFile reads and decodes a display file.
func LoadDisplayFile(path string) (*DisplayFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read display file: %w", err)
	}
	var f DisplayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode display file %s: %w", path, err)
	}
	for i, tz := range f.Timezones {
		if tz.Name == "" || tz.Zone == "" {
			return nil, fmt.Errorf("display file %s: timezone %d needs name and zone", path, i)
		}
	}
	return &f, nil
}

// apply overrides the environment settings the file provides.
func (f *DisplayFile) apply(cfg *Config) {
	if f.Region != nil {
		cfg.Region = domain.RegionFromCorners(*f.Region)
	}
	if len(f.Timezones) > 0 {
		cfg.Timezones = f.Timezones
	}
}
