package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, "abc", utils.Value(utils.Ptr("abc")))
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, utils.SplitList(" a, ,b ,"))
	require.Empty(t, utils.SplitList(""))
}

func TestFirstNonEmpty(t *testing.T) {
	require.Equal(t, "b", utils.FirstNonEmpty("", "  ", "b", "c"))
	require.Equal(t, "", utils.FirstNonEmpty())
}
