// Package glo implements the results API and official document download
// against the Government Lottery Office endpoints.
//
// Every endpoint is a JSON POST. Latest and by-date answers carry prize
// blocks with amounts; the paged history carries only the headline
// categories.
package glo
