package zones

import "fmt"

/* Zone represents one monitored input line bound to a bridge accessory
 * Uses value semantics as it represents data, not behavior; zones are
 * immutable after loading and live for the process lifetime
 */
type Zone struct {
	Name        string
	Pin         int // BCM numbering
	AccessoryID string

	// SecurityAccessoryID is the accessory escalated against when this
	// zone deactivates. Empty means the zone is not a security sensor.
	SecurityAccessoryID string

	// ActiveLow inverts the level-to-state mapping. The default
	// (active-high) matches pull-down wiring where a closed contact
	// pulls the line high.
	ActiveLow bool
}

// The Raspberry Pi header exposes BCM lines 0 through 27.
const maxBCMPin = 27

// Validate checks if the zone configuration is usable.
func (z *Zone) Validate() error {
	if z.AccessoryID == "" {
		return fmt.Errorf("accessory_id cannot be empty for zone %q", z.Name)
	}
	if z.Pin < 0 || z.Pin > maxBCMPin {
		return fmt.Errorf("invalid GPIO %d for zone %q: BCM pins are 0-%d", z.Pin, z.Name, maxBCMPin)
	}
	if z.SecurityAccessoryID != "" && z.SecurityAccessoryID == z.AccessoryID {
		return fmt.Errorf("security accessory must be distinct from accessory %q for zone %q", z.AccessoryID, z.Name)
	}
	return nil
}

// Security reports whether the zone escalates on deactivation.
func (z *Zone) Security() bool {
	return z.SecurityAccessoryID != ""
}
