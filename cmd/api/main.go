package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"voice-leads-go/internal/actionable"
	"voice-leads-go/internal/aggregator"
	"voice-leads-go/internal/config"
	"voice-leads-go/internal/dataset"
	"voice-leads-go/internal/fingerprint"
	"voice-leads-go/internal/forwarder"
	"voice-leads-go/internal/logger"
	"voice-leads-go/internal/processor"
	"voice-leads-go/internal/types"
)

type ackResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    types.ProcessingResult `json:"data"`
}

type replayResponse struct {
	Insight    aggregator.LeadInsight `json:"insight"`
	ActionCard actionable.ActionCard  `json:"action_card"`
	ReportPath string                 `json:"report_path"`
}

type server struct {
	cfg  *config.Config
	log  *logger.Logger
	proc *processor.Processor
	fwd  *forwarder.Forwarder
}

func main() {
	cfg := config.Load()

	log := logger.Build(cfg.Server.Environment, cfg.Server.LogLevel, os.Stdout)
	log.WithField("service", "voice-leads-go").Info("starting service")

	s := &server{
		cfg:  cfg,
		log:  log,
		proc: processor.New(processor.WithLogger(log.WithField("component", "processor"))),
	}
	if cfg.Sink.URL != "" {
		s.fwd = forwarder.New(cfg.Sink.URL, log.WithField("component", "forwarder"),
			forwarder.WithAPIKey(cfg.Sink.APIKey),
			forwarder.WithTimeout(cfg.Sink.Timeout),
			forwarder.WithRetry(cfg.Sink.MaxRetry, 0),
			forwarder.WithContractCheck(cfg.Sink.ValidateOut),
		)
		log.WithField("sink_url", cfg.Sink.URL).Info("result forwarding enabled")
	}

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		log.WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("POST /webhooks/call-completed", s.handleCallCompleted)
	mux.HandleFunc("GET /replay", s.handleReplay)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

// handleCallCompleted always acknowledges with 200 so the provider does not
// redeliver; failures are carried in the result body.
func (s *server) handleCallCompleted(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "call_completed")

	raw := decodeBody(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes), reqLog)
	if digest, err := fingerprint.Digest(raw); err == nil {
		reqLog = reqLog.WithField("payload_digest", digest)
	}

	start := time.Now()
	res := s.proc.Process(raw)
	entry := reqLog.WithFields(logger.ResultFields(res)).WithField("duration_ms", time.Since(start).Milliseconds())
	if res.IsValid {
		entry.Info("call processed")
	} else {
		entry.Warn("call processed with errors")
	}

	if s.fwd != nil {
		go func(res types.ProcessingResult, l *logrus.Entry) {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Sink.MaxRetry+s.cfg.Sink.Timeout)
			defer cancel()
			if err := s.fwd.Send(ctx, res); err != nil {
				l.WithField("error", err.Error()).Error("result forwarding failed")
			}
		}(res, reqLog)
	}

	msg := "Webhook processed successfully"
	if !res.IsValid {
		msg = "Webhook received with validation errors"
	}
	writeJSON(w, reqLog, ackResponse{Success: true, Message: msg, Data: res})
}

// handleReplay reprocesses the archive at ARCHIVE_PATH and writes the lead report.
func (s *server) handleReplay(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "replay")
	if s.cfg.Archive.Path == "" {
		http.Error(w, "replay disabled: ARCHIVE_PATH not set", http.StatusNotFound)
		return
	}

	records, err := dataset.LoadPayloads(s.cfg.Archive.Path, reqLog)
	if err != nil {
		reqLog.WithField("error", err.Error()).Error("archive load error")
		http.Error(w, "archive load error", http.StatusInternalServerError)
		return
	}

	results := make([]types.ProcessingResult, 0, len(records))
	for _, rec := range records {
		res := s.proc.Process(rec.Payload)
		if !res.IsValid {
			reqLog.WithField("record", rec.ID).WithField("errors", res.Errors).Debug("archived call invalid")
		}
		results = append(results, res)
	}

	ins := aggregator.Aggregate(results)
	card := actionable.Generate(ins)
	if err := dataset.WriteReport(s.cfg.Archive.ReportPath, results, ins); err != nil {
		reqLog.WithField("error", err.Error()).Error("report write error")
		http.Error(w, "report write error", http.StatusInternalServerError)
		return
	}
	reqLog.WithFields(logrus.Fields{
		"total_calls": ins.TotalCalls,
		"valid_calls": ins.ValidCalls,
		"report_path": s.cfg.Archive.ReportPath,
	}).Info("replay complete")

	writeJSON(w, reqLog, replayResponse{Insight: ins, ActionCard: card, ReportPath: s.cfg.Archive.ReportPath})
}

// decodeBody returns nil for empty, oversized or malformed bodies; the
// pipeline repairs nil into a fallback record.
func decodeBody(body io.Reader, log *logrus.Entry) any {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		if err != io.EOF {
			log.WithField("error", err.Error()).Warn("undecodable webhook body")
		}
		return nil
	}
	return raw
}

func writeJSON(w http.ResponseWriter, log *logrus.Entry, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithField("error", err.Error()).Error("failed to write response")
	}
}
