// Package export renders scan results for archiving and command-line output.
//
// JSONExporter writes results as a JSON array (or a single object for one
// result). CSVExporter writes one row per finding, prefixed with the scan it
// belongs to, which suits spreadsheets and CI annotations.
package export
