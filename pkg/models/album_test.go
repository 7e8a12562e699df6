package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreSet_Add(t *testing.T) {
	s := NewGenreSet("Pop", " Rock ", "", "electronic", "pop")
	assert.Equal(t, GenreSet{"pop", "rock", "electronic"}, s)

	s = s.Add("Soul", "ROCK")
	assert.Equal(t, GenreSet{"pop", "rock", "electronic", "soul"}, s)
}

func TestGenreSet_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b GenreSet
		want bool
	}{
		{"same order", GenreSet{"pop", "rock"}, GenreSet{"pop", "rock"}, true},
		{"different order", GenreSet{"pop", "rock"}, GenreSet{"rock", "pop"}, true},
		{"both empty", GenreSet{}, nil, true},
		{"missing one", GenreSet{"pop"}, GenreSet{"pop", "rock"}, false},
		{"different member", GenreSet{"pop", "jazz"}, GenreSet{"pop", "rock"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestAlbum_Identity(t *testing.T) {
	a := Album{Artist: "Lorde", Title: "Solar Power"}
	assert.Equal(t, Identified{Artist: "Lorde", Title: "Solar Power"}, a.Identity())
	assert.False(t, a.IsPlaceholder())

	a.Title = PlaceholderTitle
	assert.Equal(t, Placeholder{Artist: "Lorde"}, a.Identity())
	assert.True(t, a.IsPlaceholder())
}

func TestMonthEnd(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2021, time.May, 3, 0, 0, 0, 0, time.UTC), "2021-05-31"},
		{time.Date(2020, time.February, 10, 0, 0, 0, 0, time.UTC), "2020-02-29"},
		{time.Date(2021, time.February, 1, 0, 0, 0, 0, time.UTC), "2021-02-28"},
		{time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC), "2021-12-31"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthEnd(tt.in).Format(DateLayout))
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2021-05-03")
	require.NoError(t, err)
	assert.Equal(t, "2021-05-03", d.Format(DateLayout))

	d, err = ParseDate("2021-05-03T22:15:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "2021-05-03", d.Format(DateLayout))

	_, err = ParseDate("May 3")
	assert.Error(t, err)
}
