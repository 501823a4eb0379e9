// Package connectors holds the upstream source adapters. Each subpackage
// knows how to fetch draw data from one source:
//
//   - glo: the structured results API and its official sheets
//   - mirror: sheets on a third-party mirror, looked up by date
//   - webpage: per-date HTML result pages
//
// They share the rate limited HTTP client in fetch.
package connectors
