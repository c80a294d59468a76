package scd2

import (
	"fmt"

	"github.com/lakeforge/scd2historize/internal/tabular"
)

// Align reconciles the column set of history and feed into a single shared
// business schema, returning both tables re-projected onto it. ignore names
// history-only columns (captured, delimited) that are preserved on the
// history side and excluded from the unified schema and from feed entirely.
//
// The unified schema is canonical and independent of row data: columns
// present on both sides keep their order from history's business columns,
// columns present only in feed are appended in feed order, and columns
// present only in history are appended last. A column missing from one side
// is added there filled with nulls, typed from the side where it exists and
// forced nullable.
func Align(history, feed tabular.Table, ignore []string) (historyAligned, feedAligned tabular.Table, err error) {
	hBusiness := history.Schema().Without(ignore...)
	fSchema := feed.Schema()

	hCols := hBusiness.Columns()
	fCols := fSchema.Columns()

	fByName := make(map[string]tabular.Column, len(fCols))
	for _, c := range fCols {
		fByName[c.Name] = c
	}
	hByName := make(map[string]tabular.Column, len(hCols))
	for _, c := range hCols {
		hByName[c.Name] = c
	}

	var unified []tabular.Column
	for _, c := range hCols {
		if fc, ok := fByName[c.Name]; ok {
			if fc.Type != c.Type {
				return tabular.Table{}, tabular.Table{}, newSchemaIncompatibleError("align",
					fmt.Sprintf("column %q has type %v in history and %v in feed", c.Name, c.Type, fc.Type), nil)
			}
			merged := c
			merged.Nullable = c.Nullable || fc.Nullable
			unified = append(unified, merged)
		}
	}
	for _, c := range fCols {
		if _, ok := hByName[c.Name]; !ok {
			c.Nullable = true
			unified = append(unified, c)
		}
	}
	for _, c := range hCols {
		if _, ok := fByName[c.Name]; !ok {
			c.Nullable = true
			unified = append(unified, c)
		}
	}

	unifiedSchema, err := tabular.NewSchema(unified...)
	if err != nil {
		return tabular.Table{}, tabular.Table{}, newSchemaIncompatibleError("align", "unified schema invalid", err)
	}

	hWidened := history
	for _, c := range fCols {
		if _, ok := hByName[c.Name]; !ok {
			hWidened = hWidened.WithNullColumn(c)
		}
	}
	fWidened := feed
	for _, c := range hCols {
		if _, ok := fByName[c.Name]; !ok {
			c.Nullable = true
			fWidened = fWidened.WithNullColumn(c)
		}
	}

	historyTargetCols := make([]tabular.Column, 0, unifiedSchema.Len()+len(ignore))
	for _, n := range unifiedSchema.Names() {
		c, _ := unifiedSchema.Column(n)
		historyTargetCols = append(historyTargetCols, c)
	}
	for _, n := range ignore {
		c, ok := history.Schema().Column(n)
		if !ok {
			return tabular.Table{}, tabular.Table{}, newMalformedHistoryError("align",
				fmt.Sprintf("history is missing ignored column %q", n), nil)
		}
		historyTargetCols = append(historyTargetCols, c)
	}
	historyTargetSchema, err := tabular.NewSchema(historyTargetCols...)
	if err != nil {
		return tabular.Table{}, tabular.Table{}, newSchemaIncompatibleError("align", "history target schema invalid", err)
	}

	historyAligned, err = hWidened.Project(historyTargetSchema)
	if err != nil {
		return tabular.Table{}, tabular.Table{}, newSchemaIncompatibleError("align", "failed to project history onto unified schema", err)
	}
	feedAligned, err = fWidened.Project(unifiedSchema)
	if err != nil {
		return tabular.Table{}, tabular.Table{}, newSchemaIncompatibleError("align", "failed to project feed onto unified schema", err)
	}
	return historyAligned, feedAligned, nil
}
