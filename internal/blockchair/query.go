package blockchair

import (
	"fmt"
	"time"
)

// dateFormat is the calendar-day granularity Blockchair accepts in time()
// filters. Both bounds are inclusive.
const dateFormat = "2006-01-02"

// Query is a filter expression for the Blockchair transaction index: a
// closed time range combined with exactly one of an exact base-unit value
// or an exact recipient. When Recipient is set it takes over the whole
// query; Value is ignored.
type Query struct {
	From      time.Time
	To        time.Time
	Value     string // Integer base units (satoshi, wei)
	Recipient string
}

// Encode renders the query in Blockchair's q= filter syntax, e.g.
// "time(2021-02-28..2021-03-02),value(50000000)".
func (q Query) Encode() string {
	window := fmt.Sprintf("time(%s..%s)", q.From.Format(dateFormat), q.To.Format(dateFormat))
	if q.Recipient != "" {
		return fmt.Sprintf("%s,recipient(%s)", window, q.Recipient)
	}
	return fmt.Sprintf("%s,value(%s)", window, q.Value)
}
