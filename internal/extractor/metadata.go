package extractor

import (
	"time"

	"voice-leads-go/internal/payload"
	"voice-leads-go/internal/types"
)

// ExtractCallMetadata derives the call record fields. It never fails; missing
// values fall back to the same defaults the repairer uses.
func ExtractCallMetadata(p types.CanonicalPayload) types.CallMetadata {
	dv := payload.ReadDynamicVariables(p)

	callerID := dv.CallerID
	if callerID == "" {
		callerID = payload.DefaultCallerID
	}
	callType := types.CallTypePhone
	if callerID == payload.DefaultCallerID {
		callType = types.CallTypeInternal
	}

	return types.CallMetadata{
		ConversationID:      dv.ConversationID,
		AgentID:             dv.AgentID,
		CallerID:            callerID,
		CalledNumber:        dv.CalledNumber,
		CallDurationSecs:    dv.CallDurationSecs,
		CallDurationMinutes: dv.CallDurationSecs / 60,
		CallTimestamp:       callTimestamp(payload.DynamicVariablesOf(p)[payload.VarTimeUTC]),
		CallType:            callType,
		CallAnalysisSummary: payload.StringOf(payload.AnalysisOf(p)["call_summary_title"]),
	}
}

// callTimestamp keeps provider ISO strings as sent and renders unix seconds
// as ISO-8601.
func callTimestamp(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if secs, ok := payload.IntOf(v); ok {
		return payload.FormatISO(time.Unix(int64(secs), 0))
	}
	return ""
}
