package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntDefault(t *testing.T) {
	require.Equal(t, 8080, ParseIntDefault(" 8080 ", 5000))
	require.Equal(t, 5000, ParseIntDefault("", 5000))
	require.Equal(t, 5000, ParseIntDefault("port", 5000))
}

func TestSplitAndTrim(t *testing.T) {
	got := SplitAndTrim(" a:9092, b:9092 ,,", ",")
	require.Equal(t, []string{"a:9092", "b:9092"}, got)
	require.Empty(t, SplitAndTrim("", ","))
}
