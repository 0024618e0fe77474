package scheduling

import (
	"time"

	"nexia/utils"
)

type weekdaySpelling struct {
	day    time.Weekday
	locale string
	names  []string // first entry is the display form
}

// weekdayTable is the closed set of accepted weekday spellings. Matching goes
// through utils.NormalizeText, so unaccented variants need no entry of their
// own. Supporting a new language means adding rows here.
var weekdayTable = []weekdaySpelling{
	{day: time.Monday, locale: "pt", names: []string{"segunda-feira", "segunda"}},
	{day: time.Tuesday, locale: "pt", names: []string{"terça-feira", "terça"}},
	{day: time.Wednesday, locale: "pt", names: []string{"quarta-feira", "quarta"}},
	{day: time.Thursday, locale: "pt", names: []string{"quinta-feira", "quinta"}},
	{day: time.Friday, locale: "pt", names: []string{"sexta-feira", "sexta"}},
	{day: time.Saturday, locale: "pt", names: []string{"sábado"}},
	{day: time.Sunday, locale: "pt", names: []string{"domingo"}},

	{day: time.Monday, locale: "es", names: []string{"lunes"}},
	{day: time.Tuesday, locale: "es", names: []string{"martes"}},
	{day: time.Wednesday, locale: "es", names: []string{"miércoles"}},
	{day: time.Thursday, locale: "es", names: []string{"jueves"}},
	{day: time.Friday, locale: "es", names: []string{"viernes"}},
	{day: time.Saturday, locale: "es", names: []string{"sábado"}},
	{day: time.Sunday, locale: "es", names: []string{"domingo"}},

	{day: time.Monday, locale: "en", names: []string{"monday"}},
	{day: time.Tuesday, locale: "en", names: []string{"tuesday"}},
	{day: time.Wednesday, locale: "en", names: []string{"wednesday"}},
	{day: time.Thursday, locale: "en", names: []string{"thursday"}},
	{day: time.Friday, locale: "en", names: []string{"friday"}},
	{day: time.Saturday, locale: "en", names: []string{"saturday"}},
	{day: time.Sunday, locale: "en", names: []string{"sunday"}},
}

var weekdayIndex = buildWeekdayIndex()

func buildWeekdayIndex() map[string]time.Weekday {
	idx := make(map[string]time.Weekday)
	for _, row := range weekdayTable {
		for _, name := range row.names {
			idx[utils.NormalizeText(name)] = row.day
		}
	}
	return idx
}

// ParseWeekday maps a weekday name in any supported language to its
// canonical weekday. Case and accents are ignored.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdayIndex[utils.NormalizeText(name)]
	return d, ok
}

// WeekdayName returns the display spelling of d in locale, falling back to
// Portuguese for unknown locales.
func WeekdayName(d time.Weekday, locale string) string {
	for _, fallback := range []string{locale, "pt"} {
		for _, row := range weekdayTable {
			if row.day == d && row.locale == fallback {
				return row.names[0]
			}
		}
	}
	return d.String()
}
