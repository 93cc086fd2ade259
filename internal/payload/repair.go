package payload

import (
	"strconv"
	"time"

	"voice-leads-go/internal/types"
)

const (
	FallbackPrefix  = "fallback_"
	FallbackAgentID = "fallback_agent"
	DefaultCallerID = "internal"
)

// FallbackConversationID builds the synthetic key used when a callback has
// no conversation id. Two malformed callbacks in the same millisecond collide.
func FallbackConversationID(now time.Time) string {
	return FallbackPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// Repair guarantees the minimum canonical shape. It rewrites v in place when
// v is already an object, so callers pass the output of Normalize.
//
// When dynamic_variables has to be created from nothing, the agent id is
// seeded too. Callbacks that do carry dynamic variables but no agent id are
// left alone and fail ValidateStructure.
func Repair(v any, now time.Time) types.CanonicalPayload {
	p, ok := v.(map[string]any)
	if !ok || p == nil {
		p = types.CanonicalPayload{}
	}

	client, ok := p[KeyClientData].(map[string]any)
	if !ok {
		client = map[string]any{}
		p[KeyClientData] = client
	}

	dv, ok := client[KeyDynamicVariables].(map[string]any)
	if !ok {
		dv = map[string]any{VarAgentID: FallbackAgentID}
		client[KeyDynamicVariables] = dv
	}

	if isBlank(dv[VarConversationID]) {
		dv[VarConversationID] = FallbackConversationID(now)
	}
	if isBlank(dv[VarCallerID]) {
		dv[VarCallerID] = DefaultCallerID
	}
	if dv[VarCallDuration] == nil {
		dv[VarCallDuration] = 0
	}
	if isBlank(dv[VarTimeUTC]) {
		dv[VarTimeUTC] = FormatISO(now)
	}
	return p
}
