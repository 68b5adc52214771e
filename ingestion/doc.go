// Package ingestion prepares the index cache for many corpora ahead of search.
//
// The Pipeline segments and windows each corpus and builds or loads its
// index on a worker pool, so later searches over the same corpora are cache
// hits. A failure on one corpus is reported in its Result and does not stop
// the others.
package ingestion
