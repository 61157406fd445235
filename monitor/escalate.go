package monitor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"alarmd/metrics"
	"alarmd/webhook"
	"alarmd/zones"
)

/* Security escalation is a two-call sequence against the security
 * accessory: query its current mode, then, only if the alarm is armed
 * (home, away or night), mark it triggered
 * Every step is log-and-abort; nothing is retried, the next zone
 * update starts the sequence fresh
 */

const (
	outcomeQueryFailed   = "query_failed"
	outcomeBadPayload    = "bad_payload"
	outcomeUnknownMode   = "unknown_mode"
	outcomeNotArmed      = "not_armed"
	outcomeTriggerFailed = "trigger_failed"
	outcomeTriggered     = "triggered"
)

// Escalate runs the escalation sequence for the zone's security
// accessory. Called only on the inactive transition of a security zone.
func (m *Monitor) Escalate(z *zones.Zone) {
	logger := m.logger.With(
		"escalation_id", uuid.New().String(),
		"zone", z.Name,
		"security_accessory", z.SecurityAccessoryID,
	)

	payload, err := m.client.Send(webhook.Params{
		{Key: "accessoryId", Value: z.SecurityAccessoryID},
	})
	if err != nil {
		logger.Error("security mode query failed", "error", err)
		metrics.IncEscalation(outcomeQueryFailed)
		return
	}

	code, err := currentState(payload)
	if err != nil {
		logger.Error("malformed security payload", "error", err)
		metrics.IncEscalation(outcomeBadPayload)
		return
	}

	mode := webhook.ModeFromCode(code)
	if mode == webhook.ModeUnknown {
		// Deliberately distinct from the parse-failure log above:
		// downstream alerting keys on this message.
		logger.Error("invalid security response", "current_state", code, "payload", fmt.Sprint(payload))
		metrics.IncEscalation(outcomeUnknownMode)
		return
	}
	if !mode.Armed() {
		logger.Debug("alarm not armed, no trigger", "mode", mode.String())
		metrics.IncEscalation(outcomeNotArmed)
		return
	}

	_, err = m.client.Send(webhook.Params{
		{Key: "accessoryId", Value: z.SecurityAccessoryID},
		{Key: "currentstate", Value: webhook.TriggerCode},
	})
	if err != nil {
		logger.Error("alarm trigger failed", "error", err, "mode", mode.String())
		metrics.IncEscalation(outcomeTriggerFailed)
		return
	}
	logger.Info("alarm triggered", "accessory", z.AccessoryID, "mode", mode.String())
	metrics.IncEscalation(outcomeTriggered)
}

// currentState extracts the integer currentState field from a mode
// query response. JSON numbers arrive as float64; some bridge
// versions quote the field, so strings are coerced too.
func currentState(payload map[string]any) (int, error) {
	v, ok := payload["currentState"]
	if !ok {
		return 0, &webhook.DataError{Field: "currentState", Payload: payload}
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, &webhook.DataError{Field: "currentState", Payload: payload, Err: fmt.Errorf("not an integer: %v", n)}
		}
		return int(n), nil
	case string:
		code, err := strconv.Atoi(n)
		if err != nil {
			return 0, &webhook.DataError{Field: "currentState", Payload: payload, Err: err}
		}
		return code, nil
	default:
		return 0, &webhook.DataError{Field: "currentState", Payload: payload, Err: fmt.Errorf("unexpected type %T", v)}
	}
}
