// Package selection orders units by their aggregated score and keeps the best
// ones under a Policy.
//
// Ordering is by mean score, highest first, with ties broken by unit index so
// that the same statistics always produce the same selection.
//
//	selected, err := selection.Select(stats, selection.TopK(5))
//	for _, h := range selection.Highlights(selected, units) {
//		fmt.Println(h.Label, h.Content)
//	}
package selection
