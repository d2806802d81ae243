package diffmatchpatch_test

import (
	"testing"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarker_Mark(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		left      string
		right     string
		wantLeft  []string
		wantRight []string
	}{
		{name: "identical", left: "same", right: "same"},
		{name: "single character", left: "<b>1</b>", right: "<b>2</b>", wantLeft: []string{"1"}, wantRight: []string{"2"}},
		{name: "insertion", left: "version=1.0", right: "version=1.0.1", wantRight: []string{".1"}},
		{name: "deletion", left: "a-b-c", right: "a-c", wantLeft: []string{"b-"}},
	}

	m := diffmatchpatch.NewMarker()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lm, rm := m.Mark(tt.left, tt.right)
			left := anydiff.MarkedString{Text: tt.left, Marks: lm}
			right := anydiff.MarkedString{Text: tt.right, Marks: rm}
			require.NoError(t, left.Validate())
			require.NoError(t, right.Validate())
			assert.Equal(t, tt.wantLeft, nilIfEmpty(left.MarkedTexts()))
			assert.Equal(t, tt.wantRight, nilIfEmpty(right.MarkedTexts()))
		})
	}
}

func TestMarker_Mark_Multibyte(t *testing.T) {
	t.Parallel()

	lm, rm := diffmatchpatch.NewMarker().Mark("Grüße", "Grüß Gott")

	require.NoError(t, anydiff.MarkedString{Text: "Grüße", Marks: lm}.Validate())
	require.NoError(t, anydiff.MarkedString{Text: "Grüß Gott", Marks: rm}.Validate())
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
