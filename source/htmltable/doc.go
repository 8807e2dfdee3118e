// Package htmltable scrapes record batches from HTML statistics tables.
//
// Rows are read from `table.stats_table > tbody > tr`. Each row's td cells are
// indexed from zero; Columns selects the cell holding the record name and the
// cells holding its metrics. The defaults match the FBref "Big 5" player
// table: name in cell 1, dribbles, progressive carries and final-third
// touches in cells 4, 6 and 8.
//
// Fetching is rate limited and retried with exponential backoff on transport
// errors, 429 and 5xx responses.
package htmltable
