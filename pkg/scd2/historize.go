// Package scd2 implements the SCD Type-2 historization engine: given an
// existing historized table and a freshly arrived snapshot (feed) of the
// same logical entity, it computes the new historized table such that every
// business-key row carries a temporal validity interval and changes over
// time are preserved losslessly. The package is a pure function over
// in-memory typed tabular values (internal/tabular) - it owns no
// persistence, query planning, or physical partitioning policy.
package scd2

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lakeforge/scd2historize/internal/tabular"
)

// RowKind classifies a row of Result.History by what the engine did to
// produce it, mirroring the teacher's on-disk op (I/U/D) tagging without
// adding a column to the historized schema itself.
type RowKind int

const (
	RowUnchangedOpen RowKind = iota
	RowClosed
	RowOpened
	RowCarriedClosed
)

func (k RowKind) String() string {
	switch k {
	case RowUnchangedOpen:
		return "unchanged_open"
	case RowClosed:
		return "closed"
	case RowOpened:
		return "opened"
	case RowCarriedClosed:
		return "carried_closed"
	default:
		return "unknown"
	}
}

// RowDiagnostic records what the engine did to produce one output row, for
// the caller's own audit logging - the in-memory equivalent of the
// teacher's per-row op column.
type RowDiagnostic struct {
	Row  tabular.Row
	Kind RowKind
}

// Result is historize's return value: the new historized table plus
// observability data a caller would otherwise have to recompute.
type Result struct {
	History tabular.Table

	// RunID identifies this invocation for the caller's own logging; it is
	// never written into History's schema or rows.
	RunID string

	UnchangedOpen int
	Closed        int
	Opened        int
	CarriedClosed int

	RowDiagnostics []RowDiagnostic
}

// Options configures a historize call. The zero value is valid: Offset
// defaults to DefaultOffset and Doomsday to Doomsday.
type Options struct {
	Offset   time.Duration
	Doomsday time.Time

	// RunID, if empty, is generated (grounded on the teacher's
	// SCDTableConfig.RunID / duck/scd.go run-id fallback).
	RunID string

	Logger *slog.Logger
}

func (o Options) resolve() Options {
	if o.Offset == 0 {
		o.Offset = DefaultOffset
	}
	if o.Doomsday.IsZero() {
		o.Doomsday = Doomsday
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Historize composes the Schema Aligner, Key/Value Partitioner, and Interval
// Closer into a single deterministic transformation:
// (history, feed, pk, reference, options) -> history'.
//
// history must carry the captured and delimited technical timestamp
// columns; feed carries business columns only. For fixed inputs and fixed
// (reference, offset, doomsday) the output is bit-identical across runs.
func Historize(ctx context.Context, history, feed tabular.Table, pk []string, reference time.Time, opts Options) (Result, error) {
	start := time.Now()
	opts = opts.resolve()

	if len(pk) == 0 {
		return Result{}, newConfigurationError("historize", "primary key must be non-empty", nil)
	}
	if !opts.Doomsday.After(reference) {
		return Result{}, newConfigurationError("historize", "doomsday must be strictly after reference", nil)
	}
	if opts.Offset <= 0 {
		return Result{}, newConfigurationError("historize", "offset must be positive", nil)
	}

	capturedCol, ok := history.Schema().Column(colCaptured)
	if !ok || capturedCol.Type != tabular.TypeTimestamp {
		return Result{}, newMalformedHistoryError("historize", "history is missing a timestamp-typed captured column", nil)
	}
	delimitedCol, ok := history.Schema().Column(colDelimited)
	if !ok || delimitedCol.Type != tabular.TypeTimestamp {
		return Result{}, newMalformedHistoryError("historize", "history is missing a timestamp-typed delimited column", nil)
	}
	for _, n := range pk {
		if !history.Schema().Without(colCaptured, colDelimited).Has(n) {
			return Result{}, newConfigurationError("historize", fmt.Sprintf("primary key column %q not present in history", n), nil)
		}
		if !feed.Schema().Has(n) {
			return Result{}, newConfigurationError("historize", fmt.Sprintf("primary key column %q not present in feed", n), nil)
		}
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := opts.Logger.With("component", "scd2", "run_id", runID)

	historyAligned, feedAligned, err := Align(history, feed, []string{colCaptured, colDelimited})
	if err != nil {
		return Result{}, err
	}

	workingSchema, err := relaxTechnicalColumns(historyAligned.Schema())
	if err != nil {
		return Result{}, newSchemaIncompatibleError("historize", "failed to build working schema", err)
	}

	historyWorking, err := historyAligned.Project(workingSchema)
	if err != nil {
		return Result{}, newSchemaIncompatibleError("historize", "failed to relax history technical columns", err)
	}

	feedWidened := feedAligned.WithNullColumn(capturedCol).WithNullColumn(delimitedCol)
	feedWorking, err := feedWidened.Project(workingSchema)
	if err != nil {
		return Result{}, newSchemaIncompatibleError("historize", "failed to align feed onto the working schema", err)
	}

	parts, err := classify(workingSchema, historyWorking, feedWorking, pk)
	if err != nil {
		return Result{}, err
	}
	log.DebugContext(ctx, "classified rows",
		"unchanged_open", parts.unchangedOpen.NumRows(),
		"closing", parts.closing.NumRows(),
		"opening", parts.opening.NumRows(),
		"carried_closed", parts.carriedClosed.NumRows(),
	)

	closed, err := closeIntervals(workingSchema, parts, reference, opts.Offset, opts.Doomsday)
	if err != nil {
		return Result{}, err
	}

	combined, err := closed.unchangedOpen.Union(closed.closing)
	if err != nil {
		return Result{}, newSchemaIncompatibleError("historize", "failed to union unchangedOpen and closing", err)
	}
	combined, err = combined.Union(closed.opening)
	if err != nil {
		return Result{}, newSchemaIncompatibleError("historize", "failed to union opening", err)
	}
	combined, err = combined.Union(closed.carriedClosed)
	if err != nil {
		return Result{}, newSchemaIncompatibleError("historize", "failed to union carriedClosed", err)
	}

	outputSchema, err := tightenTechnicalColumns(workingSchema)
	if err != nil {
		return Result{}, newSchemaIncompatibleError("historize", "failed to build output schema", err)
	}
	finalTable, err := combined.Project(outputSchema)
	if err != nil {
		return Result{}, newSchemaIncompatibleError("historize", "failed to project final result onto output schema", err)
	}

	diagnostics := make([]RowDiagnostic, 0, finalTable.NumRows())
	for _, r := range closed.unchangedOpen.Rows() {
		diagnostics = append(diagnostics, RowDiagnostic{Row: r, Kind: RowUnchangedOpen})
	}
	for _, r := range closed.closing.Rows() {
		diagnostics = append(diagnostics, RowDiagnostic{Row: r, Kind: RowClosed})
	}
	for _, r := range closed.opening.Rows() {
		diagnostics = append(diagnostics, RowDiagnostic{Row: r, Kind: RowOpened})
	}
	for _, r := range closed.carriedClosed.Rows() {
		diagnostics = append(diagnostics, RowDiagnostic{Row: r, Kind: RowCarriedClosed})
	}

	log.DebugContext(ctx, "historize completed",
		"rows", finalTable.NumRows(),
		"duration", time.Since(start),
	)

	return Result{
		History:        finalTable,
		RunID:          runID,
		UnchangedOpen:  closed.unchangedOpen.NumRows(),
		Closed:         closed.closing.NumRows(),
		Opened:         closed.opening.NumRows(),
		CarriedClosed:  closed.carriedClosed.NumRows(),
		RowDiagnostics: diagnostics,
	}, nil
}

// relaxTechnicalColumns returns schema with captured/delimited marked
// nullable, so intermediate feed-derived rows can carry null placeholders
// ahead of interval closing.
func relaxTechnicalColumns(schema tabular.Schema) (tabular.Schema, error) {
	cols := append([]tabular.Column{}, schema.Columns()...)
	for i, c := range cols {
		if c.Name == colCaptured || c.Name == colDelimited {
			c.Nullable = true
			cols[i] = c
		}
	}
	return tabular.NewSchema(cols...)
}

// tightenTechnicalColumns returns schema with captured/delimited marked
// non-nullable, matching the historized table's data-model declaration once
// every row has had its interval assigned.
func tightenTechnicalColumns(schema tabular.Schema) (tabular.Schema, error) {
	cols := append([]tabular.Column{}, schema.Columns()...)
	for i, c := range cols {
		if c.Name == colCaptured || c.Name == colDelimited {
			c.Nullable = false
			cols[i] = c
		}
	}
	return tabular.NewSchema(cols...)
}
