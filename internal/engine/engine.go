package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-triangles/internal/chart"
	"github.com/tartampluch/go-triangles/internal/config"
)

// errNoYear marks a BDAY without a year (--MM-DD); no chart can be drawn from it.
var errNoYear = errors.New(config.MsgSkippedNoYear)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // Path to the .vcf file
	WebURL          string // CardDAV or WebDAV URL
	WebUser         string // HTTP Basic Auth Username
	WebPass         string // HTTP Basic Auth Password
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D")
	MaxBytes        int64  // Source size cap; 0 means config.DefaultMaxSourceBytes
}

// Generator reads contacts, computes their charts and renders the calendar feed.
type Generator struct {
	Clock   Clock
	Fetcher VCardFetcher

	// FormatSummary lets the caller inject localized event titles.
	FormatSummary func(name string, age int) string

	// FormatDescription renders a chart for the event body. Defaults to Chart.Summary.
	FormatDescription func(c chart.Chart) string
}

type syncStats struct {
	processed, charted, today int
}

// RunSync executes the fetch, parse, chart and render pipeline.
// It returns the ICS data, the charted contacts, the count of birthdays today, and any error.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) ([]byte, []ChartEntry, int, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Unauthorized() {
			log.Warn(config.MsgCredentialsRejected,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyStatus, statusErr.Code)
		}
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	src := newSourceReader(reader, cfg.MaxBytes)
	defer func() { _ = src.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	ics, entries, count, err := g.generateCalendar(ctx, src, cfg.ReminderTrigger)
	if err == nil {
		log.Debug(config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return ics, entries, count, err
}

// acquireStream opens the configured contact source.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// generateCalendar decodes every card, charts the ones with a full birth
// date and emits three yearly events per contact.
func (g *Generator) generateCalendar(ctx context.Context, src *sourceReader, reminderTrigger string) ([]byte, []ChartEntry, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Birthdays follow the local calendar; only the stamp is UTC.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	decoder := vcard.NewDecoder(src)
	var stats syncStats
	var entries []ChartEntry

	for {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A failing stream would fail every later card too.
			if srcErr := src.Err(); srcErr != nil {
				return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrVCardParse, srcErr)
			}
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, err := parseDate(bday.Value)
		if err != nil {
			msg := config.MsgSkippedDate
			if errors.Is(err, errNoYear) {
				msg = config.MsgSkippedNoYear
			}
			slog.Debug(msg,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}

		c, err := chart.FromTime(birthDate)
		if err != nil {
			return nil, nil, 0, err
		}
		stats.charted++

		name := contactName(card)
		input := fmt.Sprintf(config.FormatHashInput, name, birthDate.Format(time.RFC3339), config.UIDSalt)
		hash := sha256.Sum256([]byte(input))
		uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

		nextOcc, ageNext := calculateNextOccurrence(now, birthDate)

		entries = append(entries, ChartEntry{
			UID:            uidBase,
			Name:           name,
			DateOfBirth:    birthDate,
			NextOccurrence: nextOcc,
			AgeNext:        ageNext,
			Chart:          c,
		})

		events, isToday := g.createEvents(name, birthDate, c, reminderTrigger, now, uidBase)
		if isToday {
			stats.today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyDOB, birthDate.Format(config.DateFormatFullDash),
				config.LogKeyMission, c.Mission)
		}

		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	if len(cal.Children) == 0 {
		g.logSuccess(stats)
		return []byte(config.StubVCalendar), entries, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats)
	return buf.Bytes(), entries, stats.today, nil
}

func (g *Generator) logSuccess(stats syncStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.charted),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// contactName prefers FN, then N, then a placeholder.
func contactName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

// calculateNextOccurrence returns the next birthday on or after today and the age reached then.
func calculateNextOccurrence(now time.Time, birthDate time.Time) (time.Time, int) {
	loc := now.Location()

	// time.Date normalizes Feb 29 to March 1st in non-leap years.
	candidate := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if candidate.Before(todayStart) {
		candidate = time.Date(now.Year()+1, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	}

	return candidate, candidate.Year() - birthDate.Year()
}

// createEvents generates events for the previous, current and next year,
// skipping years before the person was born.
func (g *Generator) createEvents(name string, birthDate time.Time, c chart.Chart, reminderTrigger string, now time.Time, uidBase string) ([]*ical.Event, bool) {
	currentYear := now.Year()
	targetYears := []int{currentYear - 1, currentYear, currentYear + 1}
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()

	description := c.Summary()
	if g.FormatDescription != nil {
		description = g.FormatDescription(c)
	}

	var events []*ical.Event
	isToday := false

	for _, y := range targetYears {
		if y < birthDate.Year() {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

		age := y - birthDate.Year()
		summary := fallbackSummary(name, age)
		if g.FormatSummary != nil {
			summary = g.FormatSummary(name, age)
		}
		event.Props.SetText(config.PropSummary, summary)
		event.Props.SetText(config.PropDescription, description)

		eventDate := time.Date(y, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
		if y == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}

		events = append(events, event)
	}
	return events, isToday
}

// fallbackSummary is the untranslated event title.
func fallbackSummary(name string, age int) string {
	if age == 0 {
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	}
	return fmt.Sprintf(config.FallbackSummaryAge, name, age)
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value keeps the TRIGGER free of a VALUE=TEXT parameter.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// parseDate accepts the full-date BDAY layouts. Year-less values are
// reported with errNoYear.
func parseDate(value string) (time.Time, error) {
	if strings.HasPrefix(value, "--") {
		return time.Time{}, errNoYear
	}

	layouts := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.New(config.ErrDateParse)
}
