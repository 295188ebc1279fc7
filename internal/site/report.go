package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// IssueCode enumerates machine-parseable issue identifiers. Codes are stable
// contract: append only, never reuse.
type IssueCode string

const (
	IssueMalformedRuleset  IssueCode = "MALFORMED_RULESET"
	IssueMissingMetadata   IssueCode = "MISSING_METADATA"
	IssueDuplicateSlug     IssueCode = "DUPLICATE_SLUG"
	IssueBrokenLink        IssueCode = "BROKEN_LINK"
	IssueEmptyInput        IssueCode = "EMPTY_INPUT"
	IssueCanceled          IssueCode = "BUILD_CANCELED"
	IssueGenericStageError IssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a structured taxonomy entry describing a discrete problem scoped
// to one unit (one ruleset, one document, one link).
type Issue struct {
	Code     IssueCode     `json:"code"`
	Stage    StageName     `json:"stage"`
	Severity IssueSeverity `json:"severity"`
	Unit     string        `json:"unit,omitempty"`
	Message  string        `json:"message"`
}

// Report captures high-level metrics about one build run.
type Report struct {
	SchemaVersion   int
	BuildID         string
	Commit          string
	Rulesets        int
	Guidelines      int
	RejectedDocs    int
	Pages           int
	Start           time.Time
	End             time.Time
	Errors          []error
	Warnings        []error
	Issues          []Issue
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	Outcome         BuildOutcome
}

func newReport(buildID string) *Report {
	return &Report{
		SchemaVersion:   1,
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
	}
}

// AddIssue appends a structured issue and mirrors it into the legacy
// Errors/Warnings slices when err is non-nil.
func (r *Report) AddIssue(code IssueCode, stage StageName, severity IssueSeverity, unit, msg string, err error) {
	r.Issues = append(r.Issues, Issue{Code: code, Stage: stage, Severity: severity, Unit: unit, Message: msg})
	if err == nil {
		return
	}
	switch severity {
	case SeverityError:
		r.Errors = append(r.Errors, err)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, err)
	}
}

func (r *Report) recordStageError(se *StageError) {
	r.StageErrorKinds[se.Stage] = se.Kind
	switch se.Kind {
	case StageErrorWarning:
		r.Warnings = append(r.Warnings, se)
	default:
		r.Errors = append(r.Errors, se)
	}
}

func (r *Report) finish() {
	r.End = time.Now()
	r.deriveOutcome()
}

// deriveOutcome sets Outcome from recorded errors and warnings.
func (r *Report) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("build=%s rulesets=%d guidelines=%d pages=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.BuildID, r.Rulesets, r.Guidelines, r.Pages, dur.Truncate(time.Millisecond),
		len(r.Errors), len(r.Warnings), r.Outcome)
}

// reportSerializable mirrors Report with string errors for JSON output.
type reportSerializable struct {
	SchemaVersion   int                         `json:"schema_version"`
	BuildID         string                      `json:"build_id"`
	Commit          string                      `json:"commit,omitempty"`
	Rulesets        int                         `json:"rulesets"`
	Guidelines      int                         `json:"guidelines"`
	RejectedDocs    int                         `json:"rejected_docs"`
	Pages           int                         `json:"pages"`
	Start           time.Time                   `json:"start"`
	End             time.Time                   `json:"end"`
	Errors          []string                    `json:"errors"`
	Warnings        []string                    `json:"warnings"`
	Issues          []Issue                     `json:"issues"`
	StageDurations  map[string]time.Duration    `json:"stage_durations"`
	StageErrorKinds map[string]string           `json:"stage_error_kinds"`
	Outcome         BuildOutcome                `json:"outcome"`
}

func (r *Report) sanitizedCopy() *reportSerializable {
	durations := make(map[string]time.Duration, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durations[string(k)] = v
	}
	kinds := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		kinds[string(k)] = string(v)
	}

	s := &reportSerializable{
		SchemaVersion:   r.SchemaVersion,
		BuildID:         r.BuildID,
		Commit:          r.Commit,
		Rulesets:        r.Rulesets,
		Guidelines:      r.Guidelines,
		RejectedDocs:    r.RejectedDocs,
		Pages:           r.Pages,
		Start:           r.Start,
		End:             r.End,
		Errors:          make([]string, len(r.Errors)),
		Warnings:        make([]string, len(r.Warnings)),
		Issues:          r.Issues,
		StageDurations:  durations,
		StageErrorKinds: kinds,
		Outcome:         r.Outcome,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// Persist writes the report atomically into the output root, next to (not
// inside) the site content tree so the tree itself stays byte-stable. It
// writes build-report.json and build-report.txt; best effort, errors are for
// caller logging and never change the build outcome.
func (r *Report) Persist(root string) error {
	if r.End.IsZero() {
		r.finish()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}

	jb, err := json.MarshalIndent(r.sanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := atomicWrite(filepath.Join(root, "build-report.json"), jb); err != nil {
		return err
	}
	return atomicWrite(filepath.Join(root, "build-report.txt"), []byte(r.Summary()+"\n"))
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	// #nosec G306 -- build reports are public output
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
