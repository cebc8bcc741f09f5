// Package validation checks the numerical claims of the engine's building
// blocks and records the outcome as JSON reports.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownKind is returned by ParseKind for names outside the fixed set.
var ErrUnknownKind = errors.New("validation: unknown validator")

// SuiteName and SuiteVersion go into the metadata of every aggregate report.
const (
	SuiteName    = "catnav validation suite"
	SuiteVersion = "0.1.0"
)

const timestampLayout = "2006-01-02 15:04:05"

// #region kind
// Kind names one validator.
type Kind int

const (
	Partition Kind = iota
	Kuramoto
	Consciousness
	Ternary
	Completion
)

var kindNames = [...]string{
	Partition:     "partition",
	Kuramoto:      "kuramoto",
	Consciousness: "consciousness",
	Ternary:       "ternary",
	Completion:    "completion",
}

// All returns every validator in suite order.
func All() []Kind {
	return []Kind{Partition, Kuramoto, Consciousness, Ternary, Completion}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the lower-case validator name.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// #endregion kind

// #region result
// Result is the outcome of one validator run.
type Result struct {
	Validator       string          `json:"validator"`
	Timestamp       string          `json:"timestamp"`
	Parameters      map[string]any  `json:"parameters"`
	Results         map[string]any  `json:"results"`
	ClaimsValidated map[string]bool `json:"claims_validated"`
}

func newResult(name string, now time.Time) Result {
	return Result{
		Validator:       name,
		Timestamp:       now.Format(timestampLayout),
		Parameters:      map[string]any{},
		Results:         map[string]any{},
		ClaimsValidated: map[string]bool{},
	}
}

// claim records a checked claim together with its detail map.
func (r *Result) claim(name string, details map[string]any, ok bool) {
	r.Results[name] = details
	r.ClaimsValidated[name] = ok
}

// Passed counts validated claims.
func (r Result) Passed() int {
	n := 0
	for _, ok := range r.ClaimsValidated {
		if ok {
			n++
		}
	}
	return n
}

// Total counts every checked claim.
func (r Result) Total() int { return len(r.ClaimsValidated) }

// SuccessRate is Passed/Total, 0 when nothing was checked.
func (r Result) SuccessRate() float64 {
	if len(r.ClaimsValidated) == 0 {
		return 0
	}
	return float64(r.Passed()) / float64(r.Total())
}

// OK holds when every checked claim passed.
func (r Result) OK() bool {
	return r.Passed() == r.Total()
}

// #endregion result

// #region outcome
// Outcome is a validator's entry in the aggregate report: either a Result or
// the error that stopped it. It marshals to the bare result or to
// {"error": message}.
type Outcome struct {
	Result Result
	Err    string
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Err != "" {
		return json.Marshal(map[string]string{"error": o.Err})
	}
	return json.Marshal(o.Result)
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var raw struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Error != "" {
		*o = Outcome{Err: raw.Error}
		return nil
	}
	*o = Outcome{}
	return json.Unmarshal(b, &o.Result)
}

// #endregion outcome

// #region report
// Metadata describes one suite run.
type Metadata struct {
	Suite            string  `json:"suite"`
	Version          string  `json:"version"`
	Timestamp        string  `json:"timestamp"`
	TotalTimeSeconds float64 `json:"total_time_seconds"`
}

// Report is the aggregate written to complete_validation_results.json.
type Report struct {
	Metadata Metadata           `json:"metadata"`
	Results  map[string]Outcome `json:"results"`
}

// Claims sums validated and total claims over every validator that ran.
func (r Report) Claims() (validated, total int) {
	for _, o := range r.Results {
		if o.Err != "" {
			continue
		}
		validated += o.Result.Passed()
		total += o.Result.Total()
	}
	return validated, total
}

// Rate is the suite-wide validated fraction.
func (r Report) Rate() float64 {
	validated, total := r.Claims()
	if total == 0 {
		return 0
	}
	return float64(validated) / float64(total)
}

// Status bands the suite rate.
type Status string

const (
	StatusExcellent  Status = "excellent"
	StatusGood       Status = "good"
	StatusAcceptable Status = "acceptable"
	StatusNeedsWork  Status = "needs_work"
)

func (r Report) Status() Status {
	switch rate := r.Rate(); {
	case rate >= 0.9:
		return StatusExcellent
	case rate >= 0.8:
		return StatusGood
	case rate >= 0.7:
		return StatusAcceptable
	default:
		return StatusNeedsWork
	}
}

// #endregion report
