package scd2

import "time"

// Doomsday is the recommended far-future sentinel marking a row's delimited
// column as "currently open". Downstream consumers must treat
// delimited == doomsday as a sentinel, never as a literal calendar date.
var Doomsday = time.Date(5875, time.June, 3, 0, 0, 0, 0, time.UTC)

// DefaultOffset is the minimum gap enforced between a closed interval's
// delimited and the next interval's captured for the same key.
const DefaultOffset = time.Millisecond

const (
	colCaptured  = "captured"
	colDelimited = "delimited"
)
