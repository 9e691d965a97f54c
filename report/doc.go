// Package report renders extraction progress and the final run summary.
//
// [Write] renders an [extract.Summary] as text, JSON, or YAML. Rendering only
// reads outcomes captured during the run. [LogObserver] logs one progress
// record per processed file.
package report
