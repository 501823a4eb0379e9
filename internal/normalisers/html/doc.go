// Package html reduces scraped result pages to plain text. It strips
// scripts, styles and tags and decodes entities before the text goes
// through the shared text normaliser.
package html
