// Package source defines how record batches are acquired.
//
// Concrete loaders live in sub-packages: csvfile reads and writes flat files,
// htmltable scrapes an HTML statistics table. Fallback chains two loaders so a
// failed remote fetch degrades to a local copy.
package source
