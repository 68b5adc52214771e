// Package segment splits a corpus into ordered atomic units (words,
// sentences or paragraphs).
//
// Routing depends on the corpus source type:
//
//   - text: the corpus string is split in process. Word granularity splits on
//     single spaces literally, without normalization.
//   - file: the corpus string is a path. PDFs are decoded with
//     github.com/ledongthuc/pdf, HTML files are reduced to visible text and
//     other files are read as UTF-8.
//   - web: the corpus string is a URL. The page is fetched and its visible
//     text extracted with golang.org/x/net/html.
//
// Extracted text is whitespace normalized before it is split, and blank lines
// are kept as paragraph boundaries.
package segment
