package chart_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-triangles/internal/chart"
	"github.com/tartampluch/go-triangles/internal/numerology"
)

func TestBuild_KnownDate(t *testing.T) {
	c, err := chart.ForDate(15, 6, 1990)
	require.NoError(t, err)

	assert.Equal(t, numerology.Date{Day: 15, Month: 6, Year: 1990}, c.Date)
	assert.Equal(t, "12; 5; 17", c.Mission)

	first := c.Triangles[0]
	assert.Equal(t, numerology.Day, first.Slot)
	assert.Equal(t, "day", first.Name)
	assert.Equal(t, []string{"15", "5", "21", "8", "20", "9"}, first.Labels())

	second := c.Triangles[1]
	assert.Equal(t, chart.Triangle{
		Slot:            numerology.Month,
		Name:            "month",
		Upper:           6,
		LeftLower:       21,
		RightLower:      7,
		InnerLower:      10,
		InnerLeftUpper:  9,
		InnerRightUpper: 13,
	}, second)
}

// TestBuild_MatchesEngine checks every anchor against the engine accessors it is wired to.
func TestBuild_MatchesEngine(t *testing.T) {
	e := numerology.New()
	e.SetDate(3, 11, 1977)

	c, err := chart.Build(e)
	require.NoError(t, err)

	for i, tr := range c.Triangles {
		upper, _ := e.UpperCorner(i)
		left, _ := e.InnerLeftUpperCorner(i)
		right, _ := e.InnerRightUpperCorner(i)

		assert.Equal(t, upper, tr.Upper)
		assert.Equal(t, e.LowerCorner(i, i-1), tr.LeftLower)
		assert.Equal(t, e.LowerCorner(i, i+1), tr.RightLower)
		assert.Equal(t, e.InnerLowerCorner(i), tr.InnerLower)
		assert.Equal(t, left, tr.InnerLeftUpper)
		assert.Equal(t, right, tr.InnerRightUpper)
	}
	assert.Equal(t, e.Mission(), c.Mission)
}

func TestFromTime_ZeroBasedMonth(t *testing.T) {
	birth := time.Date(1990, time.July, 15, 0, 0, 0, 0, time.UTC)

	day, month, year := chart.PickerDate(birth)
	assert.Equal(t, 15, day)
	assert.Equal(t, 6, month, "July is month 6 for a calendar picker")
	assert.Equal(t, 1990, year)

	fromTime, err := chart.FromTime(birth)
	require.NoError(t, err)
	direct, err := chart.ForDate(15, 6, 1990)
	require.NoError(t, err)
	assert.Equal(t, direct, fromTime)
}

func TestChart_Summary(t *testing.T) {
	c, err := chart.ForDate(15, 6, 1990)
	require.NoError(t, err)

	assert.Equal(t, "15/07/1990: 15 6 19 4 8 | mission 12; 5; 17", c.Summary())
}

func TestChart_DisplayDate_CalendarMonth(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		want  string
	}{
		{"July", time.Date(1990, time.July, 15, 0, 0, 0, 0, time.UTC), "15/07/1990"},
		{"January", time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC), "01/01/2000"},
		{"December", time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC), "10/12/1815"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := chart.FromTime(tt.birth)
			require.NoError(t, err)

			assert.Equal(t, tt.want, c.DisplayDate())
			assert.True(t, strings.HasPrefix(c.Summary(), tt.want+":"))
		})
	}
}

func TestChart_JSON(t *testing.T) {
	c, err := chart.ForDate(15, 6, 1990)
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "12; 5; 17", decoded["mission"])
	triangles, ok := decoded["triangles"].([]any)
	require.True(t, ok)
	assert.Len(t, triangles, 5)

	first := triangles[0].(map[string]any)
	assert.Equal(t, "day", first["name"])
	assert.EqualValues(t, 15, first["upper"])
	assert.NotContains(t, first, "Slot")
}

func TestParseDate(t *testing.T) {
	want := time.Date(1990, time.July, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"15/07/1990", "1990-07-15", " 15/07/1990 "} {
		got, err := chart.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "07/15/1990", "15.07.1990", "yesterday"} {
		_, err := chart.ParseDate(in)
		assert.Error(t, err, in)
	}
}
