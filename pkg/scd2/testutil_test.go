package scd2

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lakeforge/scd2historize/internal/tabular"
)

// rowSortKey renders a row into a deterministic string for multiset
// comparison, independent of row order - per the spec's "tests must compare
// by multiset, not by row order" guidance.
func rowSortKey(r tabular.Row) string {
	out := ""
	for _, v := range r {
		if v.IsNull() {
			out += "<null>|"
			continue
		}
		out += fmt.Sprintf("%v|", v.Raw())
	}
	return out
}

// requireSameRows asserts that got and want contain the same rows as
// multisets (order-independent), using go-cmp for the per-row comparison.
func requireSameRows(t *testing.T, got, want tabular.Table) {
	t.Helper()
	require.True(t, got.Schema().Equal(want.Schema()), "schema mismatch: got %v want %v", got.Schema().Names(), want.Schema().Names())

	gotRows := append([]tabular.Row{}, got.Rows()...)
	wantRows := append([]tabular.Row{}, want.Rows()...)
	sort.Slice(gotRows, func(i, j int) bool { return rowSortKey(gotRows[i]) < rowSortKey(gotRows[j]) })
	sort.Slice(wantRows, func(i, j int) bool { return rowSortKey(wantRows[i]) < rowSortKey(wantRows[j]) })

	require.Equal(t, len(wantRows), len(gotRows), "row count mismatch")
	for i := range gotRows {
		for j, v := range gotRows[i] {
			wv := wantRows[i][j]
			require.Equal(t, v.IsNull(), wv.IsNull(), "row %d column %d nullness mismatch", i, j)
			if !v.IsNull() {
				require.Empty(t, cmp.Diff(v.Raw(), wv.Raw()), "row %d column %d value mismatch", i, j)
			}
		}
	}
}

var testSchema = tabular.MustNewSchema(
	tabular.Column{Name: "id", Type: tabular.TypeInt64, Nullable: false},
	tabular.Column{Name: "name", Type: tabular.TypeString, Nullable: false},
	tabular.Column{Name: "age", Type: tabular.TypeInt64, Nullable: true},
	tabular.Column{Name: "status", Type: tabular.TypeString, Nullable: true},
	tabular.Column{Name: "captured", Type: tabular.TypeTimestamp, Nullable: false},
	tabular.Column{Name: "delimited", Type: tabular.TypeTimestamp, Nullable: false},
)

var feedSchema = tabular.MustNewSchema(
	tabular.Column{Name: "id", Type: tabular.TypeInt64, Nullable: false},
	tabular.Column{Name: "name", Type: tabular.TypeString, Nullable: false},
	tabular.Column{Name: "age", Type: tabular.TypeInt64, Nullable: true},
	tabular.Column{Name: "status", Type: tabular.TypeString, Nullable: true},
)

func historyRow(id int64, name string, age int64, status string, captured, delimited time.Time) tabular.Row {
	return tabular.Row{
		tabular.Int64Value(id),
		tabular.StringValue(name),
		tabular.Int64Value(age),
		tabular.StringValue(status),
		tabular.TimestampValue(captured),
		tabular.TimestampValue(delimited),
	}
}

func feedRow(id int64, name string, age int64, status string) tabular.Row {
	return tabular.Row{
		tabular.Int64Value(id),
		tabular.StringValue(name),
		tabular.Int64Value(age),
		tabular.StringValue(status),
	}
}

var (
	refT0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	refT1 = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
)

func tsEqual(v tabular.Value, want time.Time) bool {
	got, ok := v.Timestamp()
	return ok && got.Equal(want)
}

func mustTable(t *testing.T, schema tabular.Schema, rows []tabular.Row) tabular.Table {
	t.Helper()
	tbl, err := tabular.New(schema, rows)
	require.NoError(t, err)
	return tbl
}
