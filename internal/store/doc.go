// Package store persists gauge readings as an append-only time series.
//
// The series is five parallel sequences named Index, Timestamp, Ionisation,
// CG1 and CG2. They are stored as the columns of a single SQLite table, one
// row per tick, so the sequences always have the same length. Row position
// i holds tick i of the file's history.
//
// Every Append opens the file, creates the schema if it is missing, writes
// one row in a transaction and closes the file again. No write handle is
// held between ticks, so a crash loses at most the row being written.
//
// Missing values are written as Sentinel (-999.0). Ion readings above
// IonOverflow are the controller's over-range code and are written as
// Sentinel too.
package store
