// Package results defines how completed scans are persisted and queried.
//
// The Storage interface is implemented by the storage subpackage (memory and
// SQLite backends). The retention subpackage prunes old scans on a cron
// schedule and the export subpackage renders scans as JSON or CSV.
//
// A stored scan is a *scan.Result. List and Count operate on scan summaries;
// findings are only returned by Get.
package results
