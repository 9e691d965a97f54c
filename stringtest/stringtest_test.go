package stringtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.jacobcolvin.com/firstframe/stringtest"
)

func TestJoinLF(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		lines []string
		want  string
	}{
		"empty":            {lines: nil, want: ""},
		"single":           {lines: []string{"a"}, want: "a"},
		"multiple":         {lines: []string{"a", "b", "c"}, want: "a\nb\nc"},
		"trailing newline": {lines: []string{"a", ""}, want: "a\n"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, stringtest.JoinLF(tc.lines...))
		})
	}
}
