package utils

import (
	"github.com/sanity-io/litter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var litterOpts = litter.Options{
	HidePrivateFields: true,
	StripPackageNames: true,
	Compact:           false,
}

// Dumps any value as readable Go-like syntax. Handy for logging API models.
func Prettify(v any) string {
	return litterOpts.Sdump(v)
}

var printer = message.NewPrinter(language.English)

// Formats n with thousands separators, e.g. 1234567 -> "1,234,567".
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// Same as [FormatNumber] but for the given BCP 47 locale tag. Unknown tags fall back to English.
func FormatNumberLocale(n int, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	return message.NewPrinter(tag).Sprintf("%d", n)
}

type Loggable interface {
	Log(args ...any)
}

// Logs v prettified, or err if it is non-nil. Meant for tests.
func CustomLog(t Loggable, v any, err error) {
	if err != nil {
		t.Log(err)
	} else {
		t.Log(Prettify(v))
	}
}
