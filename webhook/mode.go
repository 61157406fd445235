package webhook

/* SecurityMode represents the alarm posture reported by the security
 * accessory's currentState field
 * The integer values are the bridge's wire codes and must not change
 */
type SecurityMode int

const (
	ModeHome      SecurityMode = 0
	ModeAway      SecurityMode = 1
	ModeNight     SecurityMode = 2
	ModeOff       SecurityMode = 3
	ModeTriggered SecurityMode = 4

	// ModeUnknown covers every code outside the bridge's table.
	ModeUnknown SecurityMode = -1
)

// TriggerCode is the currentstate value that marks the accessory as triggered.
const TriggerCode = "4"

// ModeFromCode maps a bridge currentState code to a SecurityMode.
func ModeFromCode(code int) SecurityMode {
	switch code {
	case 0, 1, 2, 3, 4:
		return SecurityMode(code)
	default:
		return ModeUnknown
	}
}

// String returns the string representation of the mode.
func (m SecurityMode) String() string {
	switch m {
	case ModeHome:
		return "home"
	case ModeAway:
		return "away"
	case ModeNight:
		return "night"
	case ModeOff:
		return "off"
	case ModeTriggered:
		return "triggered"
	default:
		return "unknown"
	}
}

// Armed reports whether the alarm is armed in some posture. Only an
// armed alarm may be escalated to triggered.
func (m SecurityMode) Armed() bool {
	return m == ModeHome || m == ModeAway || m == ModeNight
}
