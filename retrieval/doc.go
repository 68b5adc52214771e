// Package retrieval scores corpus spans against a query.
//
// Three strategies implement Retriever:
//
//   - Dense: query embedding against a cached index.Index
//   - Sparse: BM25 over span contents, built in memory per request
//   - Hybrid: dense and sparse run concurrently, joined with reciprocal rank fusion
//
// Every strategy returns spans highest score first. A topK of zero or less
// returns every span, which is what overlap aggregation needs: a unit only
// gets statistics if some span covering it was scored.
package retrieval
