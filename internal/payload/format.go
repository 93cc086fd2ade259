package payload

import "voice-leads-go/internal/types"

// Format tags the wire-format generation a callback arrived in.
type Format int

const (
	FormatUnrecognized Format = iota
	FormatWrappedV2
	FormatLegacyV1
	FormatFlatV0
)

func (f Format) String() string {
	switch f {
	case FormatWrappedV2:
		return "wrapped_v2"
	case FormatLegacyV1:
		return "legacy_v1"
	case FormatFlatV0:
		return "flat_v0"
	default:
		return "unrecognized"
	}
}

// flatFields maps the oldest flat callback fields onto dynamic variables.
var flatFields = []struct{ from, to string }{
	{"conversation_id", VarConversationID},
	{"agent_id", VarAgentID},
	{"phone_number", VarCallerID},
	{"duration_seconds", VarCallDuration},
	{"timestamp", VarTimeUTC},
}

// Classify reports which known wire format raw matches. Wrapped is checked
// before legacy, legacy before flat.
func Classify(raw any) Format {
	m, ok := raw.(map[string]any)
	if !ok {
		return FormatUnrecognized
	}
	switch {
	case isWrapped(m):
		return FormatWrappedV2
	case isLegacy(m):
		return FormatLegacyV1
	case isFlat(m):
		return FormatFlatV0
	default:
		return FormatUnrecognized
	}
}

// Normalize rewrites raw into the canonical shape. The result never aliases
// raw. Unrecognized input is copied as is; Repair deals with it.
func Normalize(raw any) (any, Format) {
	f := Classify(raw)
	switch f {
	case FormatWrappedV2:
		return liftWrapped(raw.(map[string]any)), f
	case FormatLegacyV1:
		return deepCopy(raw), f
	case FormatFlatV0:
		return synthesizeFlat(raw.(map[string]any)), f
	default:
		return deepCopy(raw), f
	}
}

func isWrapped(m map[string]any) bool {
	if _, ok := m["type"]; !ok {
		return false
	}
	data, ok := m["data"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = data[KeyClientData].(map[string]any)
	return ok
}

func isLegacy(m map[string]any) bool {
	client, ok := m[KeyClientData].(map[string]any)
	if !ok {
		return false
	}
	_, ok = client[KeyDynamicVariables].(map[string]any)
	return ok
}

func isFlat(m map[string]any) bool {
	if _, ok := m[KeyClientData]; ok {
		return false
	}
	return isScalar(m["conversation_id"]) || isScalar(m["agent_id"])
}

func liftWrapped(m map[string]any) types.CanonicalPayload {
	data := m["data"].(map[string]any)
	client := deepCopy(data[KeyClientData]).(map[string]any)

	out := types.CanonicalPayload{
		KeyClientData: client,
		"webhookType": m["type"],
	}
	if ts, ok := m["event_timestamp"]; ok {
		out["eventTimestamp"] = ts
	}
	if cid, ok := data["conversation_id"]; ok {
		out["conversationId"] = cid
	}
	if analysis, ok := data[KeyAnalysis]; ok {
		out[KeyAnalysis] = deepCopy(analysis)
	}

	// Older wrapped callbacks only carry the ids on the envelope.
	backfill := map[string]any{
		VarConversationID: data["conversation_id"],
		VarAgentID:        data["agent_id"],
	}
	for key, v := range backfill {
		if isBlank(v) {
			continue
		}
		dv, ok := client[KeyDynamicVariables].(map[string]any)
		if !ok {
			dv = map[string]any{}
			client[KeyDynamicVariables] = dv
		}
		if isBlank(dv[key]) {
			dv[key] = v
		}
	}
	return out
}

func synthesizeFlat(m map[string]any) types.CanonicalPayload {
	out := deepCopy(m).(map[string]any)
	dv := map[string]any{}
	for _, f := range flatFields {
		if v, ok := m[f.from]; ok && v != nil {
			dv[f.to] = v
		}
	}
	out[KeyClientData] = map[string]any{KeyDynamicVariables: dv}
	return out
}
