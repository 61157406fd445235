package zones

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader for the zones.yaml file
 * Zone order in the file is the order the poll loop walks, so the
 * loader preserves it
 */

// File represents the structure of zones.yaml.
type File struct {
	Zones []ZoneConfig `yaml:"zones"`
}

// ZoneConfig represents a single zone in the YAML file.
type ZoneConfig struct {
	Name        string `yaml:"name"`
	Pin         int    `yaml:"pin"` // BCM numbering
	AccessoryID string `yaml:"accessory_id"`
	Security    bool   `yaml:"security"`   // opt in to escalation
	ActiveLow   bool   `yaml:"active_low"` // optional polarity override
}

// Load reads and validates the zones file. securityID is the global
// security accessory identity bound to every zone that opts in; it may
// be empty only if no zone opts in.
func Load(filePath, securityID string) ([]Zone, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading zones file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing zones YAML: %w", err)
	}
	if len(file.Zones) == 0 {
		return nil, fmt.Errorf("no zones defined in %s", filePath)
	}

	seen := make(map[int]string, len(file.Zones))
	zones := make([]Zone, 0, len(file.Zones))
	for _, zc := range file.Zones {
		zone := Zone{
			Name:        zc.Name,
			Pin:         zc.Pin,
			AccessoryID: zc.AccessoryID,
			ActiveLow:   zc.ActiveLow,
		}
		if zone.Name == "" {
			zone.Name = zc.AccessoryID
		}
		if zc.Security {
			if securityID == "" {
				return nil, fmt.Errorf("zone %q requires a security accessory but none is configured", zone.Name)
			}
			zone.SecurityAccessoryID = securityID
		}
		if err := zone.Validate(); err != nil {
			return nil, fmt.Errorf("validating zone: %w", err)
		}
		if other, dup := seen[zone.Pin]; dup {
			return nil, fmt.Errorf("GPIO %d claimed by both %q and %q", zone.Pin, other, zone.Name)
		}
		seen[zone.Pin] = zone.Name
		zones = append(zones, zone)
	}

	return zones, nil
}
