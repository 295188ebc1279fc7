// Package site runs the staged build pipeline that turns discovered sources
// into the generated documentation tree, and computes the cross-document
// index structures.
package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stationhq/stylebook/internal/metrics"
)

// StageName identifies a pipeline stage.
type StageName string

const (
	StagePrepare     StageName = "prepare"
	StageDiscover    StageName = "discover"
	StageLoad        StageName = "load"
	StageRender      StageName = "render"
	StageIndexes     StageName = "indexes"
	StageVerifyLinks StageName = "verify_links"
	StageAssets      StageName = "assets"
	StageFinalize    StageName = "finalize"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// namedStage pairs a stage with its name for the runner.
type namedStage struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled error. Warnings accumulate and the run continues.
func runStages(ctx context.Context, bs *BuildState, recorder metrics.Recorder, stages []namedStage) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			bs.Report.recordStageError(se)
			recorder.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.name] = dur
		recorder.ObserveStageDuration(string(st.name), dur)

		if err == nil {
			recorder.IncStageResult(string(st.name), metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(st.name, err)
		}
		bs.Report.recordStageError(se)

		switch se.Kind {
		case StageErrorWarning:
			recorder.IncStageResult(string(st.name), metrics.ResultWarning)
			continue
		case StageErrorCanceled:
			recorder.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		default:
			recorder.IncStageResult(string(st.name), metrics.ResultFatal)
			return se
		}
	}
	return nil
}
