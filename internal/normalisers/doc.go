// Package normalisers turns fetched content into plain text the sheet
// parser can scan. Each subpackage handles one input format:
//
//   - text: whitespace and digit-run normalisation shared by all sources
//   - html: result pages
//   - pdf: result sheets, via pdftotext
package normalisers
