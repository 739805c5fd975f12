package app

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-triangles/internal/chart"
	"github.com/tartampluch/go-triangles/internal/config"
	"github.com/tartampluch/go-triangles/internal/numerology"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// slotKeys maps each slot to its translation key.
var slotKeys = map[numerology.Slot]string{
	numerology.Day:         config.TKeySlotDay,
	numerology.Month:       config.TKeySlotMonth,
	numerology.Year:        config.TKeySlotYear,
	numerology.FourthUpper: config.TKeySlotFourth,
	numerology.FifthUpper:  config.TKeySlotFifth,
}

// anchorKeys follows the order of chart.Triangle.Labels.
var anchorKeys = []string{
	config.TKeyLblUpper,
	config.TKeyLblLeftLower,
	config.TKeyLblRightLower,
	config.TKeyLblInnerLower,
	config.TKeyLblInnerLeft,
	config.TKeyLblInnerRight,
}

// Translator localizes chart labels and event titles.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer

	// Languages lists the locale codes found in the embedded files.
	Languages []string
}

// NewTranslator loads the embedded locales and selects lang.
func NewTranslator(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		t.SetLanguage(lang)
		return t
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		t.Languages = append(t.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	t.SetLanguage(lang)
	return t
}

// SetLanguage switches the active locale. Unparseable tags fall back to the default language.
func (t *Translator) SetLanguage(lang string) {
	if _, err := language.Parse(lang); err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, lang,
			config.LogKeyError, err,
		)
		lang = config.DefaultLanguage
	}
	t.localizer = i18n.NewLocalizer(t.bundle, lang, config.DefaultLanguage)
}

// Msg translates key, returning the key itself when no translation exists.
func (t *Translator) Msg(key string, data map[string]any) string {
	if t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// Summary is the localized event title for a contact turning age.
func (t *Translator) Summary(name string, age int) string {
	key, fallback := config.TKeyEvtSummaryAge, fmt.Sprintf(config.FallbackSummaryAge, name, age)
	if age == 0 {
		key, fallback = config.TKeyEvtSummaryBirth, fmt.Sprintf(config.FallbackSummaryBirth, name)
	}

	msg := t.Msg(key, map[string]any{"Name": name, "Age": age})
	if msg == key {
		return fallback
	}
	return msg
}

// Description is the localized one-line chart used in event bodies,
// e.g. "Mission: 12; 5; 17 | Day 15, Month 6, Year 19, Fourth 4, Fifth 8".
func (t *Translator) Description(c chart.Chart) string {
	uppers := make([]string, len(c.Triangles))
	for i, tr := range c.Triangles {
		uppers[i] = fmt.Sprintf("%s %d", t.Msg(slotKeys[numerology.Slots[i]], nil), tr.Upper)
	}
	return fmt.Sprintf(config.FormatChartSummary, t.Msg(config.TKeyLblMission, nil), c.Mission) +
		" | " + strings.Join(uppers, ", ")
}

// Render lays the chart out as text, one block per triangle.
func (t *Translator) Render(c chart.Chart) string {
	var b strings.Builder

	b.WriteString(t.Msg(config.TKeyChartTitle, map[string]any{"Date": c.DisplayDate()}))
	b.WriteString("\n")

	for i, tr := range c.Triangles {
		b.WriteString(t.Msg(config.TKeyTriangle, map[string]any{
			"Index": i + 1,
			"Name":  t.Msg(slotKeys[numerology.Slots[i]], nil),
		}))
		b.WriteString("\n")

		for j, label := range tr.Labels() {
			fmt.Fprintf(&b, config.FormatLabelLine, t.Msg(anchorKeys[j], nil), label)
		}
	}

	fmt.Fprintf(&b, config.FormatChartSummary+"\n", t.Msg(config.TKeyLblMission, nil), c.Mission)
	return b.String()
}
