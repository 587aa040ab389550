package audit

import (
	"time"

	"golang.org/x/text/language"
)

// DefaultLocale matches the locale the history pages were written for.
const DefaultLocale = "tr-TR"

// FormatDate renders t as a short calendar date for the given BCP 47 locale.
// Unparseable locales fall back to DefaultLocale. This is display-only.
func FormatDate(t time.Time, locale string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout(locale))
}

func dateLayout(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	switch base.String() {
	case "tr", "de", "ru", "pl", "fi", "nb", "cs":
		return "02.01.2006"
	case "en":
		if region.String() == "US" {
			return "1/2/2006"
		}
		return "02/01/2006"
	case "fr", "es", "it", "pt":
		return "02/01/2006"
	case "ja", "zh", "ko":
		return "2006/01/02"
	default:
		return "2006-01-02"
	}
}
