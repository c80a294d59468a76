package scd2

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lakeforge/scd2historize/internal/tabular"
)

func TestAlignIdenticalSchemas(t *testing.T) {
	t.Parallel()

	h := mustTable(t, testSchema, nil)
	f := mustTable(t, feedSchema, nil)

	hAligned, fAligned, err := Align(h, f, []string{colCaptured, colDelimited})
	require.NoError(t, err)

	require.Equal(t, []string{"id", "name", "age", "status", "captured", "delimited"}, hAligned.Schema().Names())
	require.Equal(t, []string{"id", "name", "age", "status"}, fAligned.Schema().Names())
}

func TestAlignAddsMissingColumnAsNull(t *testing.T) {
	t.Parallel()

	h := mustTable(t, testSchema, []tabular.Row{
		historyRow(1, "Egon", 23, "healthy", refT0, Doomsday),
	})

	fSchemaWithExtra := tabular.MustNewSchema(
		tabular.Column{Name: "id", Type: tabular.TypeInt64, Nullable: false},
		tabular.Column{Name: "name", Type: tabular.TypeString, Nullable: false},
		tabular.Column{Name: "age", Type: tabular.TypeInt64, Nullable: true},
		tabular.Column{Name: "status", Type: tabular.TypeString, Nullable: true},
		tabular.Column{Name: "region", Type: tabular.TypeString, Nullable: false},
	)
	f := mustTable(t, fSchemaWithExtra, []tabular.Row{
		{tabular.Int64Value(1), tabular.StringValue("Egon"), tabular.Int64Value(23), tabular.StringValue("healthy"), tabular.StringValue("eu")},
	})

	hAligned, fAligned, err := Align(h, f, []string{colCaptured, colDelimited})
	require.NoError(t, err)

	require.Equal(t, []string{"id", "name", "age", "status", "region", "captured", "delimited"}, hAligned.Schema().Names())
	col, ok := hAligned.Schema().Column("region")
	require.True(t, ok)
	require.True(t, col.Nullable)
	require.True(t, hAligned.Rows()[0][4].IsNull())

	require.Equal(t, []string{"id", "name", "age", "status", "region"}, fAligned.Schema().Names())
}

func TestAlignDroppedFeedColumnStaysOnHistoryAsNullable(t *testing.T) {
	t.Parallel()

	h := mustTable(t, testSchema, []tabular.Row{
		historyRow(1, "Egon", 23, "healthy", refT0, Doomsday),
	})
	narrowFeedSchema := tabular.MustNewSchema(
		tabular.Column{Name: "id", Type: tabular.TypeInt64, Nullable: false},
		tabular.Column{Name: "name", Type: tabular.TypeString, Nullable: false},
	)
	f := mustTable(t, narrowFeedSchema, []tabular.Row{
		{tabular.Int64Value(1), tabular.StringValue("Egon")},
	})

	hAligned, fAligned, err := Align(h, f, []string{colCaptured, colDelimited})
	require.NoError(t, err)

	require.Equal(t, []string{"id", "name", "age", "status", "captured", "delimited"}, hAligned.Schema().Names())
	require.Equal(t, []string{"id", "name", "age", "status"}, fAligned.Schema().Names())
	require.True(t, fAligned.Rows()[0][2].IsNull())
	require.True(t, fAligned.Rows()[0][3].IsNull())

	col, ok := fAligned.Schema().Column("age")
	require.True(t, ok)
	require.True(t, col.Nullable)
}

func TestAlignTypeMismatchIsFatal(t *testing.T) {
	t.Parallel()

	h := mustTable(t, testSchema, nil)
	badFeedSchema := tabular.MustNewSchema(
		tabular.Column{Name: "id", Type: tabular.TypeString, Nullable: false},
		tabular.Column{Name: "name", Type: tabular.TypeString, Nullable: false},
		tabular.Column{Name: "age", Type: tabular.TypeInt64, Nullable: true},
		tabular.Column{Name: "status", Type: tabular.TypeString, Nullable: true},
	)
	f := mustTable(t, badFeedSchema, nil)

	_, _, err := Align(h, f, []string{colCaptured, colDelimited})
	require.Error(t, err)

	var scdErr *Error
	require.ErrorAs(t, err, &scdErr)
	require.Equal(t, ErrorTypeSchemaIncompatible, scdErr.Type)
}

func TestAlignMissingIgnoredColumnOnHistoryIsFatal(t *testing.T) {
	t.Parallel()

	noTechSchema := tabular.MustNewSchema(
		tabular.Column{Name: "id", Type: tabular.TypeInt64, Nullable: false},
		tabular.Column{Name: "name", Type: tabular.TypeString, Nullable: false},
	)
	h := mustTable(t, noTechSchema, nil)
	f := mustTable(t, tabular.MustNewSchema(tabular.Column{Name: "id", Type: tabular.TypeInt64}, tabular.Column{Name: "name", Type: tabular.TypeString}), nil)

	_, _, err := Align(h, f, []string{colCaptured, colDelimited})
	require.Error(t, err)

	var scdErr *Error
	require.ErrorAs(t, err, &scdErr)
	require.Equal(t, ErrorTypeMalformedHistory, scdErr.Type)
}
