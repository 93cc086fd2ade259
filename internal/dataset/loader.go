package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Record is one archived webhook body.
type Record struct {
	ID  string
	Row int
	// Payload is the decoded JSON body, or nil when the cell could not be
	// decoded. The pipeline repairs nil into a fallback record.
	Payload any
}

// LoadPayloads reads archived webhook bodies from the first sheet of an xlsx
// file. The payload column is auto-detected by header heuristics.
func LoadPayloads(path string, log *logrus.Entry) ([]Record, error) {
	log = log.WithField("component", "dataset.loader").WithField("path", path)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	payloadIdx, idIdx := detectColumns(rows[0])
	if payloadIdx == -1 {
		return nil, fmt.Errorf("no payload column in header %v", rows[0])
	}
	log.WithFields(logrus.Fields{"payloadIdx": payloadIdx, "idIdx": idIdx}).Debug("detected archive columns")

	var out []Record
	skipped := 0
	for i, r := range rows {
		if i == 0 {
			continue
		}
		cell := ""
		if payloadIdx < len(r) {
			cell = strings.TrimSpace(r[payloadIdx])
		}
		if cell == "" {
			continue
		}
		rec := Record{Row: i + 1}
		if idIdx >= 0 && idIdx < len(r) {
			rec.ID = strings.TrimSpace(r[idIdx])
		}
		if rec.ID == "" {
			rec.ID = "row-" + strconv.Itoa(i+1)
		}
		if v, err := decodeCell(cell); err == nil {
			rec.Payload = v
		} else {
			skipped++
			log.WithField("row", rec.Row).WithField("error", err.Error()).Warn("undecodable payload cell")
		}
		out = append(out, rec)
	}
	log.WithField("records", len(out)).WithField("undecodable", skipped).Info("archive loaded")
	return out, nil
}

func detectColumns(header []string) (payloadIdx, idIdx int) {
	payloadIdx, idIdx = -1, -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "payload") || strings.Contains(l, "body") || strings.Contains(l, "json") || strings.Contains(l, "webhook"):
			if payloadIdx == -1 {
				payloadIdx = i
			}
		case l == "id" || strings.Contains(l, "conversation") || strings.HasSuffix(l, " id") || strings.HasSuffix(l, "_id"):
			if idIdx == -1 {
				idIdx = i
			}
		}
	}
	// single-column archives carry only the body
	if payloadIdx == -1 && len(header) == 1 {
		payloadIdx = 0
	}
	return payloadIdx, idIdx
}

func decodeCell(cell string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(cell))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after payload")
	}
	return v, nil
}
