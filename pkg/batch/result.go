package batch

import (
	"time"

	"github.com/Sternrassler/placeholder-batch/pkg/report"
)

// Kind classifies the outcome of one item.
type Kind string

const (
	// KindSuccess means the image was saved.
	KindSuccess Kind = report.KindSuccess

	// KindStatus means the API answered with a status other than 200.
	KindStatus Kind = report.KindStatus

	// KindTransport means no response was received.
	KindTransport Kind = report.KindTransport

	// KindWrite means the image could not be written to disk.
	KindWrite Kind = report.KindWrite
)

func (k Kind) label() string {
	switch k {
	case KindSuccess:
		return "saved"
	case KindStatus:
		return "status_failure"
	case KindTransport:
		return "transport_failure"
	case KindWrite:
		return "write_failure"
	default:
		return "unknown"
	}
}

// Result is the transient outcome of one item.
type Result struct {
	Item       string
	Path       string
	StatusCode int
	Bytes      int64
	Kind       Kind
	Err        error
}

// OK reports whether the image was saved.
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

// Outcome converts the result to its recorded form.
func (r Result) Outcome() report.Outcome {
	o := report.Outcome{
		Item:       r.Item,
		Path:       r.Path,
		StatusCode: r.StatusCode,
		Bytes:      r.Bytes,
		Kind:       string(r.Kind),
		RecordedAt: time.Now(),
	}
	if r.Err != nil {
		o.Error = r.Err.Error()
	}
	return o
}

// Summary aggregates a run.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Results   []Result
	Duration  time.Duration
}

func (s *Summary) add(r Result) {
	s.Total++
	if r.OK() {
		s.Succeeded++
	} else {
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Failures returns the failed results in processing order.
func (s *Summary) Failures() []Result {
	var failed []Result
	for _, r := range s.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Counts returns the summary in the recorder's aggregate form.
func (s *Summary) Counts() report.Counts {
	return report.Counts{Succeeded: s.Succeeded, Failed: s.Failed}
}
