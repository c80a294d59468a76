package scd2

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lakeforge/scd2historize/internal/tabular"
)

func workingSchemaForTest(t *testing.T) tabular.Schema {
	t.Helper()
	ws, err := relaxTechnicalColumns(testSchema)
	require.NoError(t, err)
	return ws
}

func TestClassifyNullPrimaryKeyNeverMatches(t *testing.T) {
	t.Parallel()

	// The id column must admit nulls for the null-pk rows below to be built.
	cols := append([]tabular.Column{}, workingSchemaForTest(t).Columns()...)
	cols[0].Nullable = true
	ws := tabular.MustNewSchema(cols...)

	history := mustTable(t, ws, []tabular.Row{
		{tabular.Null(), tabular.StringValue("Anon"), tabular.Int64Value(1), tabular.StringValue("healthy"), tabular.TimestampValue(refT0), tabular.TimestampValue(Doomsday)},
	})
	feed := mustTable(t, ws, []tabular.Row{
		{tabular.Null(), tabular.StringValue("Anon"), tabular.Int64Value(1), tabular.StringValue("healthy"), tabular.Null(), tabular.Null()},
	})

	p, err := classify(ws, history, feed, []string{"id", "name"})
	require.NoError(t, err)

	require.Equal(t, 0, p.unchangedOpen.NumRows(), "a null-pk history row must never be classified as unchanged")
	require.Equal(t, 1, p.closing.NumRows())
	require.Equal(t, 1, p.opening.NumRows())
}

func TestClassifyUnknownPKColumnIsConfigurationError(t *testing.T) {
	t.Parallel()

	ws := workingSchemaForTest(t)
	history := mustTable(t, ws, nil)
	feed := mustTable(t, ws, nil)

	_, err := classify(ws, history, feed, []string{"not_a_column"})
	require.Error(t, err)

	var scdErr *Error
	require.ErrorAs(t, err, &scdErr)
	require.Equal(t, ErrorTypeConfiguration, scdErr.Type)
}

func TestPayloadEqualIgnoresTechnicalColumns(t *testing.T) {
	t.Parallel()

	ws := workingSchemaForTest(t)
	a := tabular.Row{tabular.Int64Value(1), tabular.StringValue("Egon"), tabular.Int64Value(23), tabular.StringValue("healthy"), tabular.TimestampValue(refT0), tabular.TimestampValue(Doomsday)}
	b := tabular.Row{tabular.Int64Value(1), tabular.StringValue("Egon"), tabular.Int64Value(23), tabular.StringValue("healthy"), tabular.Null(), tabular.Null()}

	require.True(t, payloadEqual(ws, a, b, []string{"id", "name"}))
}

func TestPayloadEqualNullVsValueIsAChange(t *testing.T) {
	t.Parallel()

	ws := workingSchemaForTest(t)
	a := tabular.Row{tabular.Int64Value(1), tabular.StringValue("Egon"), tabular.Null(), tabular.StringValue("healthy"), tabular.TimestampValue(refT0), tabular.TimestampValue(Doomsday)}
	b := tabular.Row{tabular.Int64Value(1), tabular.StringValue("Egon"), tabular.Int64Value(23), tabular.StringValue("healthy"), tabular.Null(), tabular.Null()}

	require.False(t, payloadEqual(ws, a, b, []string{"id", "name"}))
}
