package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// SessionReport aggregates the results of one batch. It is built once by the
// scraper and treated as read-only afterwards.
type SessionReport struct {
	Timestamp       time.Time `json:"timestamp"`
	TotalTargets    int       `json:"total_targets"`
	Successful      int       `json:"successful"`
	Failed          int       `json:"failed"`
	SuccessRate     float64   `json:"success_rate"`
	IncludeMainPage bool      `json:"include_main_page"`
	Partial         bool      `json:"partial,omitempty"`
	Skipped         []string  `json:"skipped,omitempty"`
	Results         Results   `json:"-"`
}

// Results keeps target results in request order.
type Results []*TargetResult

// Get returns the result recorded under name, or nil.
func (rs Results) Get(name string) *TargetResult {
	for _, r := range rs {
		if r.Metadata.SectionName == name {
			return r
		}
	}
	return nil
}

// MarshalJSON encodes the results as a JSON object keyed by section name,
// preserving request order.
func (rs Results) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(rs))
	vals := make([]any, len(rs))
	for i, r := range rs {
		keys[i] = r.Metadata.SectionName
		vals[i] = r
	}
	return marshalOrdered(keys, vals)
}

func marshalOrdered(keys []string, vals []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(keys[i])
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(vals[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Aggregate recomputes the counters and the success rate from Results.
func (s *SessionReport) Aggregate() {
	s.TotalTargets = len(s.Results)
	s.Successful = 0
	for _, r := range s.Results {
		if r.Succeeded() {
			s.Successful++
		}
	}
	s.Failed = s.TotalTargets - s.Successful
	s.SuccessRate = SuccessRate(s.Successful, s.TotalTargets)
}

// SuccessRate returns successful/total as a percentage, 0 for an empty batch.
func SuccessRate(successful, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(successful) / float64(total)
}
