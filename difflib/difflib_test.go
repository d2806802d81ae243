package difflib_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_DefaultPattern(t *testing.T) {
	t.Parallel()

	d, err := difflib.NewTokenizer("")
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "identifier",
			input:    "myVariable",
			expected: []string{"myVariable"},
		},
		{
			name:     "decimal number",
			input:    "3.14",
			expected: []string{"3.14"},
		},
		{
			name:     "string literal",
			input:    `x = "hello world"`,
			expected: []string{"x", " ", "=", " ", `"hello world"`},
		},
		{
			name:     "unmatched characters become single tokens",
			input:    "a@é",
			expected: []string{"a", "@", "é"},
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, d.Tokenize(tt.input))
		})
	}
}

func TestTokenize_CustomPattern(t *testing.T) {
	t.Parallel()

	d, err := difflib.NewTokenizer(`[^,]+`)
	require.NoError(t, err)

	got := d.Tokenize("org.osgi.framework;version=1.8,javax.servlet")

	assert.Equal(t, []string{"org.osgi.framework;version=1.8", ",", "javax.servlet"}, got)
	assert.Equal(t, "org.osgi.framework;version=1.8,javax.servlet", strings.Join(got, ""))
}

func TestNewTokenizer_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := difflib.NewTokenizer(`(unclosed`)

	require.Error(t, err)
	assert.True(t, errors.Is(err, anydiff.ErrInvalidOption))
}
