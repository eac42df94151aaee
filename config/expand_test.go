package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	t.Setenv("KQLFRAME_TEST_CLUSTER", "https://help.kusto.windows.net")

	testCases := []struct {
		input    string
		expected string
	}{
		{"normal string", "normal string"},
		{"{{ env `KQLFRAME_TEST_CLUSTER` }}", "https://help.kusto.windows.net"},
		{"{{ env `KQLFRAME_TEST_CLUSTER` }}/", "https://help.kusto.windows.net/"},
		{"{{ env `KQLFRAME_TEST_UNSET` }}", ""},
		{"{{ exec `echo slidata` }}", "slidata"},
		{"{{ exec `echo \"hello\nbuddy\" | grep buddy` }}", "buddy"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			actual, err := expand(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestExpand_Errors(t *testing.T) {
	for _, input := range []string{
		"{{ env ",
		"{{ exec `` }}",
		"{{ exec `exit 3` }}",
		"{{ unknown `x` }}",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := expand(input)
			require.Error(t, err)
		})
	}
}
