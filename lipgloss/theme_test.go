package lipgloss_test

import (
	"testing"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemes(t *testing.T) {
	t.Parallel()

	for name, theme := range map[string]*lipgloss.Theme{
		"default": lipgloss.DefaultTheme(),
		"dark":    lipgloss.DarkTheme(),
		"light":   lipgloss.LightTheme(),
	} {
		var _ anydiff.Theme = theme
		styles := theme.Styles()
		assert.NotEmpty(t, styles.Added.Foreground, name)
		assert.NotEmpty(t, styles.Removed.Foreground, name)
		assert.NotEmpty(t, styles.Context.Foreground, name)
		assert.NotEmpty(t, styles.BlockHeader.Foreground, name)
		assert.NotEmpty(t, styles.AddedHighlight.Background, name)
		assert.NotEmpty(t, styles.RemovedHighlight.Background, name)
	}
}

func TestThemeByName(t *testing.T) {
	t.Parallel()

	light, err := lipgloss.ThemeByName("Light")
	require.NoError(t, err)
	assert.Equal(t, lipgloss.LightTheme().Styles(), light.Styles())

	dark, err := lipgloss.ThemeByName("")
	require.NoError(t, err)
	assert.Equal(t, lipgloss.DarkTheme().Styles(), dark.Styles())

	_, err = lipgloss.ThemeByName("solarized")
	assert.Error(t, err)
}
