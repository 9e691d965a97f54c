// Package stringtest helps build expected multi-line output in tests.
package stringtest

import "strings"

// JoinLF joins lines with LF line endings. Pass a trailing "" to end the
// result with a newline:
//
//	want := stringtest.JoinLF(
//		"Processing complete: /videos",
//		"  Failed extractions:  0",
//		"",
//	) // -> "Processing complete: /videos\n  Failed extractions:  0\n"
func JoinLF(lines ...string) string {
	return strings.Join(lines, "\n")
}
