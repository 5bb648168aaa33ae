// Package batch splits slices into fixed-size batches and processes them
// sequentially or with bounded concurrency.
//
// Entry imports use it so that thousands of period snapshots are written in a
// handful of transactions instead of one round trip per row, and so a
// cancelled import stops between batches.
package batch
