// Package numerology derives the corners of a birth-date leaf chart.
//
// An Engine holds one date and evaluates every corner from it on demand.
// Nothing is cached: each accessor recomputes from the current date, so the
// results are a pure function of the last SetDate call.
package numerology

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tartampluch/go-triangles/internal/config"
)

// Slot names one of the five base corners, in chart order.
type Slot int

const (
	Day Slot = iota
	Month
	Year
	FourthUpper
	FifthUpper
)

// Slots lists every slot in chart order.
var Slots = [config.SlotCount]Slot{Day, Month, Year, FourthUpper, FifthUpper}

func (s Slot) String() string {
	switch s {
	case Day:
		return "day"
	case Month:
		return "month"
	case Year:
		return "year"
	case FourthUpper:
		return "fourth_upper"
	case FifthUpper:
		return "fifth_upper"
	default:
		return "slot(" + strconv.Itoa(int(s)) + ")"
	}
}

// Valid reports whether s is one of the five chart slots.
func (s Slot) Valid() bool {
	return s >= Day && s <= FifthUpper
}

// ErrIndexOutOfRange is matched by every IndexError.
var ErrIndexOutOfRange = errors.New(config.ErrIndexOutOfRange)

// IndexError reports a single-slot accessor called outside 0..4.
type IndexError struct {
	Index int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %d (want 0..%d)", config.ErrIndexOutOfRange, e.Index, config.SlotCount-1)
}

// Is lets errors.Is match ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Date is the day/month/year triple a chart is computed from.
// Values are taken as-is: month follows the caller's convention and nothing
// is checked against a calendar.
type Date struct {
	Day   int `json:"day" yaml:"day"`
	Month int `json:"month" yaml:"month"`
	Year  int `json:"year" yaml:"year"`
}

// Engine computes chart corners for a single date.
//
// An Engine is not safe for concurrent use when SetDate may run alongside
// readers; callers that share one must serialize access.
type Engine struct {
	date Date
}

// New returns an engine whose date is unset, which behaves as (0, 0, 0).
func New() *Engine {
	return &Engine{}
}

// SetDate replaces the current date.
func (e *Engine) SetDate(day, month, year int) {
	e.date = Date{Day: day, Month: month, Year: year}
}

// Date returns the current date.
func (e *Engine) Date() Date {
	return e.date
}

// Corner evaluates the base value of a slot.
// It panics on an invalid slot; use UpperCorner for unchecked indices.
func (e *Engine) Corner(s Slot) int {
	switch s {
	case Day:
		return Reduce(e.date.Day)
	case Month:
		return e.date.Month
	case Year:
		return DigitSum(e.date.Year)
	case FourthUpper:
		return Reduce(e.Corner(Day) + e.Corner(Month) + e.Corner(Year))
	case FifthUpper:
		return Reduce(e.Corner(Day) + e.Corner(Month) + e.Corner(Year) + e.Corner(FourthUpper))
	}
	panic(&IndexError{Index: int(s)})
}

// UpperCorner returns the base corner at index. Indices are not wrapped.
func (e *Engine) UpperCorner(index int) (int, error) {
	s, err := slotAt(index)
	if err != nil {
		return 0, err
	}
	return e.Corner(s), nil
}

// LowerCorner combines two base corners. Both indices are wrapped onto the
// five slots, so index -1 addresses FifthUpper and 5 addresses Day.
func (e *Engine) LowerCorner(indexOne, indexTwo int) int {
	one, two := Slot(Wrap(indexOne)), Slot(Wrap(indexTwo))
	slog.Debug(config.MsgCorners,
		config.LogKeyComponent, config.CompNumerology,
		config.LogKeyIndexOne, indexOne,
		config.LogKeyIndexTwo, indexTwo,
		config.LogKeySlotOne, int(one),
		config.LogKeySlotTwo, int(two),
	)
	return Reduce(e.Corner(one) + e.Corner(two))
}

// InnerLeftUpperCorner combines the corner at index with its left lower corner.
func (e *Engine) InnerLeftUpperCorner(index int) (int, error) {
	s, err := slotAt(index)
	if err != nil {
		return 0, err
	}
	return Reduce(e.Corner(s) + e.LowerCorner(index, index-1)), nil
}

// InnerRightUpperCorner combines the corner at index with its right lower corner.
func (e *Engine) InnerRightUpperCorner(index int) (int, error) {
	s, err := slotAt(index)
	if err != nil {
		return 0, err
	}
	return Reduce(e.Corner(s) + e.LowerCorner(index, index+1)), nil
}

// InnerLowerCorner combines both lower corners of the triangle at index.
// It only goes through LowerCorner, so index is wrapped.
func (e *Engine) InnerLowerCorner(index int) int {
	return Reduce(e.LowerCorner(index, index+1) + e.LowerCorner(index, index-1))
}

// MissionValues returns the three mission numbers.
func (e *Engine) MissionValues() [3]int {
	first := Reduce(e.Corner(FourthUpper) + e.Corner(FifthUpper))
	second := Reduce(e.LowerCorner(int(Day), int(FifthUpper)))
	return [3]int{first, second, Reduce(first + second)}
}

// Mission formats the mission numbers as "a; b; c".
func (e *Engine) Mission() string {
	values := e.MissionValues()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, config.MissionSeparator)
}

// DigitSum adds up the decimal digits of n. Non-positive input yields 0.
func DigitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % config.DigitBase
		n /= config.DigitBase
	}
	return sum
}

// Reduce replaces a value above 22 with its digit sum, once. The result is
// not reduced again even if it still exceeds the threshold.
func Reduce(n int) int {
	if n > config.ReduceThreshold {
		return DigitSum(n)
	}
	return n
}

// Wrap maps any index onto the five slots: i%5 for i >= 0, 5+i%5 otherwise,
// with Go's truncating %. A negative multiple of five lands on 0.
func Wrap(i int) int {
	if i >= 0 {
		return i % config.SlotCount
	}
	r := config.SlotCount + i%config.SlotCount
	if r == config.SlotCount {
		return 0
	}
	return r
}

func slotAt(index int) (Slot, error) {
	s := Slot(index)
	if !s.Valid() {
		return 0, &IndexError{Index: index}
	}
	return s, nil
}
