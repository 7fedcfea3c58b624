package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatConfig selects how currency values are rendered.
type FormatConfig struct {
	// Locale is a BCP 47 tag driving the grouping and decimal separators.
	Locale string
	// Prefix is written before the number, e.g. "R$ ".
	Prefix string
}

// DefaultFormatConfig matches the dashboard's Brazilian real presentation.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{Locale: "pt-BR", Prefix: "R$ "}
}

// Formatter renders decimals as localized currency and percentage strings.
// The zero value formats with "." as decimal separator and no grouping.
type Formatter struct {
	locale string
	prefix string
	group  string
	point  string
}

// NewFormatter builds a Formatter from configuration.
func NewFormatter(cfg FormatConfig) (Formatter, error) {
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = DefaultFormatConfig().Locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}, fmt.Errorf("money: parse locale %q: %w", cfg.Locale, err)
	}
	group, point := separators(message.NewPrinter(tag))
	return Formatter{locale: tag.String(), prefix: cfg.Prefix, group: group, point: point}, nil
}

// separators reads the grouping and decimal separators the locale uses by
// rendering a sample number. Locales whose sample does not use Latin digits
// fall back to "," and ".".
func separators(p *message.Printer) (group, point string) {
	sample := p.Sprint(number.Decimal(1234567.5, number.Scale(1)))
	if !strings.HasPrefix(sample, "1") || !strings.HasSuffix(sample, "5") {
		return ",", "."
	}
	i := strings.Index(sample, "234")
	if i < 1 {
		return ",", "."
	}
	group = sample[1:i]
	rest := strings.TrimPrefix(sample[i+3:], group)
	if !strings.HasPrefix(rest, "567") {
		return ",", "."
	}
	point = rest[3 : len(rest)-1]
	if point == "" {
		return ",", "."
	}
	return group, point
}

// MustFormatter is NewFormatter for static configuration.
func MustFormatter(cfg FormatConfig) Formatter {
	f, err := NewFormatter(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// Key identifies the rendering settings, for use in cache keys.
func (f Formatter) Key() string {
	return f.locale + "|" + f.prefix
}

// Currency renders d rounded to the nearest cent, with thousands separators and
// two decimal places. Negative values carry the sign before the prefix.
func (f Formatter) Currency(d decimal.Decimal) string {
	rounded := RoundCents(d)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + f.prefix + f.fixed(rounded, CentPlaces)
}

// Percent renders a percentage value (66.7 for 66.7%) with one decimal place.
func (f Formatter) Percent(pct decimal.Decimal) string {
	return f.fixed(pct.Round(1), 1) + "%"
}

func (f Formatter) fixed(d decimal.Decimal, places int) string {
	digits := d.StringFixed(int32(places))
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		point := f.point
		if point == "" {
			point = "."
		}
		b.WriteString(point)
		b.WriteString(frac)
	}
	return b.String()
}
