package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"voice-leads-go/internal/extractor"
	"voice-leads-go/internal/logger"
	"voice-leads-go/internal/payload"
	"voice-leads-go/internal/types"
)

// State names the pipeline steps a callback moves through.
type State string

const (
	StateReceived          State = "RECEIVED"
	StateNormalized        State = "NORMALIZED"
	StateRepaired          State = "REPAIRED"
	StateStructureChecked  State = "STRUCTURE_CHECKED"
	StateAnalysisDecoded   State = "ANALYSIS_DECODED"
	StateAnalysisAbsent    State = "ANALYSIS_ABSENT"
	StateAnalysisFailed    State = "ANALYSIS_FAILED"
	StateMetadataExtracted State = "METADATA_EXTRACTED"
	StateDone              State = "DONE"
)

// Clock supplies "now" for fallback ids and default timestamps.
type Clock func() time.Time

type Processor struct {
	now Clock
	log *logrus.Entry
}

type Option func(*Processor)

func WithClock(c Clock) Option {
	return func(p *Processor) {
		if c != nil {
			p.now = c
		}
	}
}

// WithLogger enables debug tracing of state transitions.
func WithLogger(l *logrus.Entry) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

func New(opts ...Option) *Processor {
	p := &Processor{
		now: time.Now,
		log: logger.Discard().WithField("component", "processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessWebhookPayload runs the pipeline with the wall clock and no logging.
func ProcessWebhookPayload(raw any) types.ProcessingResult {
	return New().Process(raw)
}

// Process turns one raw callback into a ProcessingResult. It never panics
// and never returns an error: every failure ends up in the result's Errors,
// and call metadata is extracted regardless of earlier failures.
func (p *Processor) Process(raw any) types.ProcessingResult {
	res := types.ProcessingResult{Errors: []string{}}
	state := StateReceived
	log := p.log
	advance := func(next State) {
		log.WithFields(logrus.Fields{"from": state, "to": next}).Debug("pipeline transition")
		state = next
	}

	normalized, format := payload.Normalize(raw)
	log = log.WithField("format", format.String())
	advance(StateNormalized)

	canonical := payload.Repair(normalized, p.now())
	advance(StateRepaired)

	if err := payload.ValidateStructure(canonical); err != nil {
		res.Errors = append(res.Errors, structuralMessages(err)...)
	}
	advance(StateStructureChecked)

	analysis, status, err := analyze(canonical)
	res.AnalysisStatus = status
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
	}
	res.AnalysisData = analysis
	advance(analysisState(status))

	res.CallMetadata = extractor.ExtractCallMetadata(canonical)
	advance(StateMetadataExtracted)

	res.NormalizedData = canonical
	res.IsValid = len(res.Errors) == 0
	advance(StateDone)
	return res
}

func analyze(c types.CanonicalPayload) (a *types.ParsedAnalysis, status types.AnalysisStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, status, err = nil, types.AnalysisFailed, fmt.Errorf("analysis stage aborted: %v", r)
		}
	}()

	a, err = extractor.DecodeAnalysis(c)
	if err != nil {
		return nil, types.AnalysisFailed, err
	}
	if a == nil {
		return nil, types.AnalysisAbsent, nil
	}
	if err := extractor.ValidateAnalysis(a); err != nil {
		return nil, types.AnalysisFailed, err
	}
	return a, types.AnalysisDecoded, nil
}

func analysisState(s types.AnalysisStatus) State {
	switch s {
	case types.AnalysisDecoded:
		return StateAnalysisDecoded
	case types.AnalysisFailed:
		return StateAnalysisFailed
	default:
		return StateAnalysisAbsent
	}
}

func structuralMessages(err error) []string {
	var se *payload.StructuralError
	if errors.As(err, &se) {
		return se.Messages()
	}
	return []string{err.Error()}
}
