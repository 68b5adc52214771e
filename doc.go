// Package spansearch scores the units of a corpus against a query by
// windowing it at several sizes, retrieving over the windows and averaging
// every score that overlaps a unit.
//
// Engine is the library entry point:
//
//	engine, err := spansearch.OpenEngine("/var/cache/spansearch")
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	resp, err := engine.Search(ctx, search.Request{
//		Corpus:      text,
//		SourceType:  core.SourceText,
//		Granularity: core.GranularitySentence,
//		WindowSizes: "1 2 3",
//		Query:       "what changed?",
//		Policy:      selection.Percentage(0.1),
//	})
//
// Indexes built for dense and hybrid retrieval are cached under a content
// address and reused by later searches over the same corpus.
package spansearch
