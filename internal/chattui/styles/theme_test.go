package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	require.Equal(t, "default", Lookup("default").Name)
	require.Equal(t, "high-contrast", Lookup("high-contrast").Name)
	require.Equal(t, DefaultTheme, Lookup("unknown"))
}

func TestThemesAreComplete(t *testing.T) {
	for name, theme := range Themes {
		require.Equal(t, name, theme.Name)
		require.NotEmpty(t, theme.Base.Muted, name)
		require.NotEmpty(t, theme.Base.Accent, name)
		require.NotEmpty(t, theme.Message.Own, name)
		require.NotEmpty(t, theme.Message.Other, name)
		require.NotEmpty(t, theme.Chrome.Header, name)
		require.NotEmpty(t, theme.Chrome.LiveBadge, name)
	}
}
