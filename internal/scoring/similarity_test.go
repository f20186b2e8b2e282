package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"both empty", "", "", 0},
		{"one empty", "abc", "", 3},
		{"identical", "kota", "kota", 0},
		{"substitution", "kot", "kat", 1},
		{"insertion", "pies", "piesek", 2},
		{"classic", "kitten", "sitting", 3},
		{"diacritics count as one rune", "dzień", "dzien", 1},
		{"polish greeting", "dzen dobry", "dzień dobry", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestDistance_TriangleInequality(t *testing.T) {
	words := []string{"", "kot", "kota", "pies", "psa", "dzień dobry", "dobry", "hello"}
	for _, a := range words {
		for _, b := range words {
			for _, c := range words {
				assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c),
					"d(%q,%q) <= d(%q,%q) + d(%q,%q)", a, c, a, b, b, c)
			}
		}
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("dzień dobry", "dzień dobry"))
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, 9.0/11.0, Similarity("dzen dobry", "dzień dobry"), 1e-9)
	assert.Less(t, Similarity("hello", "dzień dobry"), 0.7)
}

func TestSimilarity_Properties(t *testing.T) {
	words := []string{"", "a", "kot", "Kota", "psa", "pies", "dzień dobry", "do widzenia"}
	for _, a := range words {
		assert.Equal(t, 1.0, Similarity(a, a))
		for _, b := range words {
			s := Similarity(a, b)
			assert.Equal(t, s, Similarity(b, a))
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestMaxSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, MaxSimilarity("kot", nil))
	assert.Equal(t, 1.0, MaxSimilarity("kot", []string{"pies", "kot"}))
	assert.InDelta(t, 2.0/3.0, MaxSimilarity("kat", []string{"pies", "kot"}), 1e-9)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "kota", Normalize("  Kota "))
	assert.Equal(t, "dzień dobry", Normalize("Dzień Dobry"))
}
