package app

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/tartampluch/go-triangles/internal/config"
)

// Settings are read from TRIANGLES_* environment variables.
type Settings struct {
	Port            string `env:"PORT"               envDefault:"18081"`
	SourceMode      string `env:"SOURCE_MODE"`
	LocalPath       string `env:"LOCAL_PATH"`
	CardDAVURL      string `env:"CARDDAV_URL"`
	Username        string `env:"USERNAME"`
	Language        string `env:"LANGUAGE"           envDefault:"en"`
	RefreshMin      int    `env:"REFRESH_MIN"        envDefault:"60"`
	ReminderEnabled bool   `env:"REMINDER_ENABLED"`
	ReminderValue   int    `env:"REMINDER_VALUE"     envDefault:"1"`
	ReminderUnit    string `env:"REMINDER_UNIT"      envDefault:"d"`
	ReminderDir     string `env:"REMINDER_DIRECTION" envDefault:"before"`
	MaxSourceBytes  int64  `env:"MAX_SOURCE_BYTES"`
}

// LoadSettings reads the process environment.
func LoadSettings() (Settings, error) {
	return LoadSettingsFrom(nil)
}

// LoadSettingsFrom reads settings from the given variables, or from the
// process environment when environment is nil.
func LoadSettingsFrom(environment map[string]string) (Settings, error) {
	var s Settings
	opts := env.Options{
		Prefix:      config.EnvPrefix,
		Environment: environment,
	}
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", config.ErrSettingsParse, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// displaySettings is the subset of Settings needed to print a chart offline.
type displaySettings struct {
	Language string `env:"LANGUAGE" envDefault:"en"`
}

// LoadLanguage reads only the display language from the process environment,
// so server settings cannot block an offline chart print.
func LoadLanguage() (string, error) {
	return LoadLanguageFrom(nil)
}

// LoadLanguageFrom is LoadLanguage over the given variables, or over the
// process environment when environment is nil.
func LoadLanguageFrom(environment map[string]string) (string, error) {
	var s displaySettings
	opts := env.Options{
		Prefix:      config.EnvPrefix,
		Environment: environment,
	}
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrSettingsParse, err)
	}
	return s.Language, nil
}

// Validate checks the server port, the refresh interval and, when
// reminders are on, their unit and direction.
func (s Settings) Validate() error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}
	port, err := strconv.Atoi(s.Port)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPortNumber, err)
	}
	if port < config.MinPort || port > config.MaxPort {
		return errors.New(config.ErrPortRange)
	}
	if s.RefreshMin < 0 {
		return errors.New(config.ErrIntervalRange)
	}
	if !s.ReminderEnabled {
		return nil
	}
	switch s.ReminderUnit {
	case config.UnitDays, config.UnitHours, config.UnitMinutes:
	default:
		return fmt.Errorf("%s: %q", config.ErrReminderUnit, s.ReminderUnit)
	}
	switch s.ReminderDir {
	case config.DirBefore, config.DirAfter:
	default:
		return fmt.Errorf("%s: %q", config.ErrReminderDir, s.ReminderDir)
	}
	return nil
}

// ReminderTrigger renders the alarm offset as an ISO-8601 duration
// (e.g. "-P1D"), or "" when reminders are off.
func (s Settings) ReminderTrigger() string {
	if !s.ReminderEnabled {
		return ""
	}

	value := s.ReminderValue
	if value <= 0 {
		value = config.DefaultReminderValue
	}

	sign := config.ISOPeriodPrefix
	if s.ReminderDir != config.DirAfter {
		sign = config.ISONegativePrefix
	}

	switch s.ReminderUnit {
	case config.UnitHours:
		return fmt.Sprintf("%sT%d%s", sign, value, config.ISOHour)
	case config.UnitMinutes:
		return fmt.Sprintf("%sT%d%s", sign, value, config.ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, value, config.ISODay)
	}
}
