// Package report summarises submission results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/indexnow/internal/submit"
)

// Entry is the reportable view of one submission.
type Entry struct {
	ID         string        `json:"id"`
	Engine     string        `json:"engine"`
	Method     string        `json:"method"`
	Endpoint   string        `json:"endpoint"`
	URLCount   int           `json:"url_count"`
	StatusCode int           `json:"status_code,omitempty"`
	Meaning    string        `json:"meaning,omitempty"`
	Accepted   bool          `json:"accepted"`
	Duration   time.Duration `json:"duration_ns"`
	Error      string        `json:"error,omitempty"`
}

// Summary contains aggregated figures about one run.
type Summary struct {
	Submissions  int           `json:"submissions"`
	Accepted     int           `json:"accepted"`
	Rejected     int           `json:"rejected"`
	Failed       int           `json:"failed"`
	URLsSent     int           `json:"urls_sent"`
	URLsAccepted int           `json:"urls_accepted"`
	StatusCodes  map[int]int   `json:"status_codes"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration_ns"`
	Entries      []Entry       `json:"entries"`
}

// OK reports whether every submission was accepted.
func (s Summary) OK() bool {
	return s.Submissions > 0 && s.Accepted == s.Submissions
}

// GenerateSummary aggregates results. Nil results are skipped.
func GenerateSummary(results []*submit.Result) Summary {
	s := Summary{
		StatusCodes: make(map[int]int),
		Entries:     make([]Entry, 0, len(results)),
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		s.Submissions++
		s.URLsSent += r.URLCount
		switch {
		case r.Accepted:
			s.Accepted++
			s.URLsAccepted += r.URLCount
		case r.StatusCode > 0:
			s.Rejected++
		default:
			s.Failed++
		}
		if r.StatusCode > 0 {
			s.StatusCodes[r.StatusCode]++
		}

		end := r.CreatedAt.Add(r.Duration)
		if s.StartTime.IsZero() || r.CreatedAt.Before(s.StartTime) {
			s.StartTime = r.CreatedAt
		}
		if end.After(s.EndTime) {
			s.EndTime = end
		}

		s.Entries = append(s.Entries, Entry{
			ID:         r.ID,
			Engine:     r.Engine,
			Method:     r.Method,
			Endpoint:   r.Endpoint,
			URLCount:   r.URLCount,
			StatusCode: r.StatusCode,
			Meaning:    r.Meaning,
			Accepted:   r.Accepted,
			Duration:   r.Duration,
			Error:      r.Error,
		})
	}

	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// Write renders summary in format, "text" or "json".
func Write(w io.Writer, format string, summary Summary) error {
	switch format {
	case "", "text":
		return WriteText(w, summary)
	case "json":
		return WriteJSON(w, summary)
	default:
		return fmt.Errorf("report: unknown format %q (want text or json)", format)
	}
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

var textTmpl = template.Must(template.New("textReport").Parse(`IndexNow Submission Summary
---------------------------
Submissions:   {{.Submissions}} ({{.Accepted}} accepted, {{.Rejected}} rejected, {{.Failed}} failed)
URLs:          {{.URLsAccepted}} of {{.URLsSent}} accepted
Duration:      {{.Duration}}

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}

Results:
{{- range .Entries}}
  {{.Engine}} {{.Method}} {{.URLCount}} url(s): {{if .StatusCode}}{{.StatusCode}} {{.Meaning}}{{else}}{{.Error}}{{end}}
{{- else}}
  None
{{- end}}
`))

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	if err := textTmpl.Execute(w, summary); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
