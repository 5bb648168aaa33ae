// Package cache provides a file-based JSON cache with TTL expiration.
//
// Entries live as one JSON file per key under a cache directory
// (~/.esgledger/cache by default). Keys are SHA-256 hashes of their parts, so
// arbitrary source ids and period names map to safe file names. Writes go to a
// temporary file and are renamed into place.
package cache
