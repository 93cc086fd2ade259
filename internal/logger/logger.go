package logger

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"voice-leads-go/internal/types"
)

type Logger struct {
	*logrus.Entry
}

// Build creates a logger for the given ENVIRONMENT and LOG_LEVEL values.
func Build(env, level string, out io.Writer) *Logger {
	base := logrus.New()

	// Local env = pretty console; others = JSON
	if env == "" || env == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(out)

	switch level {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{Entry: logrus.NewEntry(base)}
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.New().String()
	}

	return l.WithFields(logrus.Fields{
		"req_id":     reqID,
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}

// ResultFields summarizes a processing result for operator review.
func ResultFields(res types.ProcessingResult) logrus.Fields {
	fields := logrus.Fields{
		"is_valid":        res.IsValid,
		"analysis_status": res.AnalysisStatus,
		"conversation_id": res.CallMetadata.ConversationID,
		"agent_id":        res.CallMetadata.AgentID,
		"call_type":       res.CallMetadata.CallType,
		"duration_secs":   res.CallMetadata.CallDurationSecs,
	}
	if len(res.Errors) > 0 {
		fields["errors"] = res.Errors
	}
	if res.AnalysisData != nil && res.AnalysisData.LeadStatusTag != nil {
		fields["lead_status"] = *res.AnalysisData.LeadStatusTag
	}
	return fields
}
