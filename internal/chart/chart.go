// Package chart assembles the five-triangle display model from a numerology engine.
package chart

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-triangles/internal/config"
	"github.com/tartampluch/go-triangles/internal/numerology"
)

// Triangle holds the six values shown on one leaf of the chart.
type Triangle struct {
	Slot            numerology.Slot `json:"-" yaml:"-"`
	Name            string          `json:"name" yaml:"name"`
	Upper           int             `json:"upper" yaml:"upper"`
	LeftLower       int             `json:"left_lower" yaml:"left_lower"`
	RightLower      int             `json:"right_lower" yaml:"right_lower"`
	InnerLower      int             `json:"inner_lower" yaml:"inner_lower"`
	InnerLeftUpper  int             `json:"inner_left_upper" yaml:"inner_left_upper"`
	InnerRightUpper int             `json:"inner_right_upper" yaml:"inner_right_upper"`
}

// Labels returns the display strings in anchor order:
// upper, left lower, right lower, inner lower, inner left upper, inner right upper.
func (t Triangle) Labels() []string {
	values := []int{t.Upper, t.LeftLower, t.RightLower, t.InnerLower, t.InnerLeftUpper, t.InnerRightUpper}
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = strconv.Itoa(v)
	}
	return labels
}

// Chart is a fully evaluated leaf chart.
type Chart struct {
	Date      numerology.Date            `json:"date" yaml:"date"`
	Triangles [config.SlotCount]Triangle `json:"triangles" yaml:"triangles"`
	Mission   string                     `json:"mission" yaml:"mission"`
}

// Build evaluates every triangle for the engine's current date.
func Build(e *numerology.Engine) (Chart, error) {
	c := Chart{Date: e.Date()}

	for i, slot := range numerology.Slots {
		t, err := buildTriangle(e, int(slot))
		if err != nil {
			return Chart{}, fmt.Errorf("%s: %w", config.ErrChartBuild, err)
		}
		c.Triangles[i] = t
	}

	c.Mission = e.Mission()
	return c, nil
}

// ForDate builds a chart on a fresh engine.
func ForDate(day, month, year int) (Chart, error) {
	e := numerology.New()
	e.SetDate(day, month, year)
	return Build(e)
}

// FromTime builds a chart the way a calendar picker feeds the engine:
// the month is zero-based (January is 0).
func FromTime(t time.Time) (Chart, error) {
	day, month, year := PickerDate(t)
	return ForDate(day, month, year)
}

// PickerDate splits t into the day, zero-based month and year triple.
func PickerDate(t time.Time) (int, int, int) {
	return t.Day(), int(t.Month()) - config.MonthOffset, t.Year()
}

// DisplayDate formats the chart date as DD/MM/YYYY with a calendar month,
// undoing the zero-based picker month stored in Date.
func (c Chart) DisplayDate() string {
	return fmt.Sprintf(config.FormatDisplayDate, c.Date.Day, c.Date.Month+config.MonthOffset, c.Date.Year)
}

// Summary renders the chart on one line, e.g. "15/07/1990: 15 6 19 4 8 | mission 12; 5; 17".
func (c Chart) Summary() string {
	var b strings.Builder
	b.WriteString(c.DisplayDate())
	b.WriteString(":")
	for _, t := range c.Triangles {
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(t.Upper))
	}
	b.WriteString(" | mission ")
	b.WriteString(c.Mission)
	return b.String()
}

func buildTriangle(e *numerology.Engine, i int) (Triangle, error) {
	upper, err := e.UpperCorner(i)
	if err != nil {
		return Triangle{}, err
	}
	innerLeft, err := e.InnerLeftUpperCorner(i)
	if err != nil {
		return Triangle{}, err
	}
	innerRight, err := e.InnerRightUpperCorner(i)
	if err != nil {
		return Triangle{}, err
	}

	slot := numerology.Slot(i)
	return Triangle{
		Slot:            slot,
		Name:            slot.String(),
		Upper:           upper,
		LeftLower:       e.LowerCorner(i, i-1),
		RightLower:      e.LowerCorner(i, i+1),
		InnerLower:      e.InnerLowerCorner(i),
		InnerLeftUpper:  innerLeft,
		InnerRightUpper: innerRight,
	}, nil
}

// ParseDate reads a birth date typed as DD/MM/YYYY or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{config.DateFormatInput, config.DateFormatFullDash} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %q", config.ErrDateParse, value)
}
