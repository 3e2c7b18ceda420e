package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	t, err := time.Parse(DayFormat, value)
	if err != nil {
		panic(err)
	}
	return t
}

func mustRange(t *testing.T, in, out string) DateRange {
	t.Helper()
	dr, err := New(day(in), day(out))
	require.NoError(t, err)
	return dr
}

func TestNew(t *testing.T) {
	t.Run("normalizes to UTC midnight", func(t *testing.T) {
		loc := time.FixedZone("plus5", 5*3600)
		in := time.Date(2026, 9, 1, 14, 30, 0, 0, loc)
		out := time.Date(2026, 9, 4, 9, 0, 0, 0, loc)
		dr, err := New(in, out)
		require.NoError(t, err)
		assert.Equal(t, day("2026-09-01"), dr.CheckIn)
		assert.Equal(t, day("2026-09-04"), dr.CheckOut)
	})

	t.Run("rejects zero nights", func(t *testing.T) {
		_, err := New(day("2026-09-01"), day("2026-09-01"))
		assert.ErrorIs(t, err, ErrEmptyRange)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		_, err := New(day("2026-09-04"), day("2026-09-01"))
		assert.ErrorIs(t, err, ErrEmptyRange)
	})
}

func TestParse(t *testing.T) {
	dr, err := Parse("2026-09-01", "2026-09-03")
	require.NoError(t, err)
	assert.Equal(t, 2, dr.Nights())

	_, err = Parse("not-a-date", "2026-09-03")
	assert.Error(t, err)
	_, err = Parse("2026-09-01", "03/09/2026")
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	base := mustRange(t, "2026-09-10", "2026-09-15")

	cases := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"identical", mustRange(t, "2026-09-10", "2026-09-15"), true},
		{"contained", mustRange(t, "2026-09-11", "2026-09-13"), true},
		{"containing", mustRange(t, "2026-09-08", "2026-09-20"), true},
		{"overlap head", mustRange(t, "2026-09-08", "2026-09-11"), true},
		{"overlap tail", mustRange(t, "2026-09-14", "2026-09-18"), true},
		{"back to back before", mustRange(t, "2026-09-05", "2026-09-10"), false},
		{"back to back after", mustRange(t, "2026-09-15", "2026-09-20"), false},
		{"disjoint", mustRange(t, "2026-09-20", "2026-09-25"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base))
		})
	}
}

func TestContains(t *testing.T) {
	dr := mustRange(t, "2026-09-10", "2026-09-12")
	assert.True(t, dr.Contains(day("2026-09-10")))
	assert.True(t, dr.Contains(day("2026-09-11")))
	assert.False(t, dr.Contains(day("2026-09-12")), "check-out day is free")
	assert.False(t, dr.Contains(day("2026-09-09")))
}

func TestDays(t *testing.T) {
	dr := mustRange(t, "2026-09-10", "2026-09-13")
	assert.Equal(t, 3, dr.Nights())
	assert.Equal(t, []string{"2026-09-10", "2026-09-11", "2026-09-12"}, dr.Days())
}
