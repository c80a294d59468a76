package scd2

import (
	"fmt"

	"github.com/lakeforge/scd2historize/internal/tabular"
)

// partitions is the four-way split the engine's classify step produces.
// Column order of all four tables matches historyAligned/feedAligned
// (business columns in canonical order, plus captured/delimited where
// present).
type partitions struct {
	unchangedOpen tabular.Table
	closing       tabular.Table
	opening       tabular.Table
	carriedClosed tabular.Table
}

// key is a comparable representation of a primary-key tuple. A row whose key
// contains any null component gets the shared sentinel nullKey and isNull set
// to true; callers use that flag to keep such rows out of key matching, per
// the spec's null-pk rule.
type key string

const nullKey key = "\x00scd2:null-pk\x00"

func rowKey(schema tabular.Schema, row tabular.Row, pk []string) (key, bool) {
	parts := make([]any, 0, len(pk))
	for _, name := range pk {
		v, err := tabular.Get(schema, row, name)
		if err != nil {
			return "", false
		}
		if v.IsNull() {
			return nullKey, true
		}
		parts = append(parts, v.Raw())
	}
	return key(fmt.Sprint(parts)), false
}

// payloadEqual reports whether a and b, rows of schema with pk and technical
// (captured/delimited) columns excluded, are equal under the engine's
// null-sensitive column equality.
func payloadEqual(schema tabular.Schema, a, b tabular.Row, pk []string) bool {
	pkSet := make(map[string]struct{}, len(pk))
	for _, n := range pk {
		pkSet[n] = struct{}{}
	}
	for _, c := range schema.Columns() {
		if _, isPK := pkSet[c.Name]; isPK {
			continue
		}
		if c.Name == colCaptured || c.Name == colDelimited {
			continue
		}
		i := schema.IndexOf(c.Name)
		if !tabular.Equal(a[i], b[i], c.Type) {
			return false
		}
	}
	return true
}

// classify implements the §4.2 Key/Value Partitioner: given the shared
// aligned schema of history and feed and the primary-key column list, splits
// history's open rows and feed's rows into unchangedOpen, closing, opening,
// and passes already-closed history rows through as carriedClosed.
//
// Rows whose key contains a null component never match another row (a null
// pk cannot equal another null pk for partitioning purposes): every such
// history row is closed (if open) and every such feed row is opened, as if
// its key were unique to it.
func classify(historySchema tabular.Schema, history, feed tabular.Table, pk []string) (partitions, error) {
	for _, n := range pk {
		if !historySchema.Has(n) {
			return partitions{}, newConfigurationError("classify", fmt.Sprintf("primary key column %q not found in aligned schema", n), nil)
		}
	}

	delimitedIdx := historySchema.IndexOf(colDelimited)
	if delimitedIdx < 0 {
		return partitions{}, newMalformedHistoryError("classify", "aligned history schema is missing the delimited column", nil)
	}

	var openRows, closedRows []tabular.Row
	openKeys := make(map[key][]tabular.Row, history.NumRows())
	for _, r := range history.Rows() {
		if r[delimitedIdx].IsNull() {
			return partitions{}, newMalformedHistoryError("classify", "history row has a null delimited value", nil)
		}
		ts, ok := r[delimitedIdx].Timestamp()
		if !ok {
			return partitions{}, newMalformedHistoryError("classify", "history delimited column is not a timestamp", nil)
		}
		if ts.Equal(Doomsday) {
			k, isNull := rowKey(historySchema, r, pk)
			if !isNull {
				if _, dup := openKeys[k]; dup {
					return partitions{}, newHistoryInvariantError("classify", "duplicate open row for the same primary key in history", nil)
				}
			}
			openKeys[k] = append(openKeys[k], r)
			openRows = append(openRows, r)
		} else {
			closedRows = append(closedRows, r)
		}
	}

	feedByKey := make(map[key][]tabular.Row, feed.NumRows())
	for _, r := range feed.Rows() {
		k, isNull := rowKey(historySchema, r, pk)
		if !isNull {
			if _, dup := feedByKey[k]; dup {
				return partitions{}, newFeedInvariantError("classify", "duplicate primary key in feed", nil)
			}
		}
		feedByKey[k] = append(feedByKey[k], r)
	}

	var unchangedOpen, closing, opening []tabular.Row
	matchedFeedKeys := make(map[key]bool, len(feedByKey))

	for _, r := range openRows {
		k, isNull := rowKey(historySchema, r, pk)
		if isNull {
			closing = append(closing, r)
			continue
		}
		fRows, ok := feedByKey[k]
		if !ok {
			closing = append(closing, r)
			continue
		}
		matchedFeedKeys[k] = true
		fRow := fRows[0]
		if payloadEqual(historySchema, r, fRow, pk) {
			unchangedOpen = append(unchangedOpen, r)
		} else {
			closing = append(closing, r)
			opening = append(opening, fRow)
		}
	}

	// Walk feed.Rows() in its original order (rather than ranging feedByKey,
	// a map) so row order - and therefore output bytes - never depends on Go's
	// randomized map iteration.
	for _, r := range feed.Rows() {
		k, isNull := rowKey(historySchema, r, pk)
		if isNull || !matchedFeedKeys[k] {
			opening = append(opening, r)
		}
	}

	unchangedOpenTable, err := tabular.New(historySchema, unchangedOpen)
	if err != nil {
		return partitions{}, newMalformedHistoryError("classify", "failed to build unchangedOpen partition", err)
	}
	closingTable, err := tabular.New(historySchema, closing)
	if err != nil {
		return partitions{}, newMalformedHistoryError("classify", "failed to build closing partition", err)
	}
	openingTable, err := tabular.New(historySchema, opening)
	if err != nil {
		return partitions{}, newFeedInvariantError("classify", "failed to build opening partition", err)
	}
	carriedClosedTable, err := tabular.New(historySchema, closedRows)
	if err != nil {
		return partitions{}, newMalformedHistoryError("classify", "failed to build carriedClosed partition", err)
	}

	return partitions{
		unchangedOpen: unchangedOpenTable,
		closing:       closingTable,
		opening:       openingTable,
		carriedClosed: carriedClosedTable,
	}, nil
}
