package scd2

import (
	"time"

	"github.com/lakeforge/scd2historize/internal/tabular"
)

// closeIntervals rewrites the closing and opening partitions' captured/
// delimited columns on cloned rows (returning new Tables; input rows are
// never mutated) per §4.3: closing rows get delimited = reference - offset,
// opening rows get captured = reference and delimited = doomsday.
// unchangedOpen and carriedClosed are returned unchanged.
func closeIntervals(schema tabular.Schema, p partitions, reference time.Time, offset time.Duration, doomsday time.Time) (partitions, error) {
	capturedIdx := schema.IndexOf(colCaptured)
	delimitedIdx := schema.IndexOf(colDelimited)
	if capturedIdx < 0 || delimitedIdx < 0 {
		return partitions{}, newMalformedHistoryError("closeIntervals", "schema is missing captured/delimited columns", nil)
	}

	closedAt := reference.Add(-offset)

	closingRows := make([]tabular.Row, len(p.closing.Rows()))
	for i, r := range p.closing.Rows() {
		nr := r.Clone()
		nr[delimitedIdx] = tabular.TimestampValue(closedAt)
		closingRows[i] = nr
	}
	closingTable, err := tabular.New(schema, closingRows)
	if err != nil {
		return partitions{}, newMalformedHistoryError("closeIntervals", "failed to rewrite closing partition", err)
	}

	openingRows := make([]tabular.Row, len(p.opening.Rows()))
	for i, r := range p.opening.Rows() {
		nr := r.Clone()
		nr[capturedIdx] = tabular.TimestampValue(reference)
		nr[delimitedIdx] = tabular.TimestampValue(doomsday)
		openingRows[i] = nr
	}
	openingTable, err := tabular.New(schema, openingRows)
	if err != nil {
		return partitions{}, newMalformedHistoryError("closeIntervals", "failed to rewrite opening partition", err)
	}

	return partitions{
		unchangedOpen: p.unchangedOpen,
		closing:       closingTable,
		opening:       openingTable,
		carriedClosed: p.carriedClosed,
	}, nil
}
