package scd2

import (
	"fmt"
	"sort"

	"github.com/lakeforge/scd2historize/internal/tabular"
)

// Violation is one invariant breach reported by ValidateHistory.
type Violation struct {
	Invariant string
	Key       string
	Message   string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: key=%s: %s", v.Invariant, v.Key, v.Message)
}

// ValidateHistory checks a historized table against I1-I4 without mutating
// it, reporting every violation found. It is the read-only counterpart to
// the teacher's destructive backfill/repair functions: corruption is
// reported for the caller to quarantine or repair out of band, never
// silently patched.
func ValidateHistory(history tabular.Table, pk []string) ([]Violation, error) {
	schema := history.Schema()
	capturedIdx := schema.IndexOf(colCaptured)
	delimitedIdx := schema.IndexOf(colDelimited)
	if capturedIdx < 0 || delimitedIdx < 0 {
		return nil, newMalformedHistoryError("validate", "history is missing captured/delimited columns", nil)
	}
	for _, n := range pk {
		if !schema.Has(n) {
			return nil, newConfigurationError("validate", fmt.Sprintf("primary key column %q not found in schema", n), nil)
		}
	}

	type interval struct {
		captured, delimited tabular.Value
		row                 tabular.Row
	}
	byKey := make(map[string][]interval)

	for _, r := range history.Rows() {
		k, isNull := rowKey(schema, r, pk)
		keyStr := string(k)
		if isNull {
			keyStr = fmt.Sprintf("<null-pk row %v>", r)
		}
		byKey[keyStr] = append(byKey[keyStr], interval{
			captured:  r[capturedIdx],
			delimited: r[delimitedIdx],
			row:       r,
		})
	}

	var violations []Violation

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		ivs := byKey[k]

		openCount := 0
		for _, iv := range ivs {
			cTS, _ := iv.captured.Timestamp()
			dTS, _ := iv.delimited.Timestamp()
			if !cTS.Before(dTS) {
				violations = append(violations, Violation{
					Invariant: "I1",
					Key:       k,
					Message:   fmt.Sprintf("captured (%s) is not strictly before delimited (%s)", cTS, dTS),
				})
			}
			if dTS.Equal(Doomsday) {
				openCount++
			}
		}
		if openCount > 1 {
			violations = append(violations, Violation{
				Invariant: "I3",
				Key:       k,
				Message:   fmt.Sprintf("%d open rows for the same key, expected at most 1", openCount),
			})
		}

		sort.Slice(ivs, func(i, j int) bool {
			ci, _ := ivs[i].captured.Timestamp()
			cj, _ := ivs[j].captured.Timestamp()
			return ci.Before(cj)
		})

		for i := 1; i < len(ivs); i++ {
			prevD, _ := ivs[i-1].delimited.Timestamp()
			curC, _ := ivs[i].captured.Timestamp()
			if curC.Before(prevD) {
				violations = append(violations, Violation{
					Invariant: "I2",
					Key:       k,
					Message:   fmt.Sprintf("interval starting %s overlaps the previous interval ending %s", curC, prevD),
				})
			}
			if payloadEqual(schema, ivs[i-1].row, ivs[i].row, pk) {
				violations = append(violations, Violation{
					Invariant: "I4",
					Key:       k,
					Message:   fmt.Sprintf("consecutive versions at %s and %s have identical business payloads", prevD, curC),
				})
			}
		}
	}

	return violations, nil
}
