// Package currency implements the money formatting and parsing engine used by
// every amount field in the app.
//
// All functions are pure and allocation-only: no I/O, no state, safe from any
// goroutine. Parsing never fails; unparseable input yields zero.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Convention describes how a currency is rendered.
type Convention struct {
	Symbol       string
	SymbolBefore bool
	Thousands    string
	Decimal      string
}

// DefaultCode is assumed when a currency code is unknown or empty.
const DefaultCode = "TRY"

var conventions = map[string]Convention{
	"TRY": {Symbol: "₺", SymbolBefore: true, Thousands: ".", Decimal: ","},
	"USD": {Symbol: "$", SymbolBefore: true, Thousands: ",", Decimal: "."},
	"GBP": {Symbol: "£", SymbolBefore: true, Thousands: ",", Decimal: "."},
	"EUR": {Symbol: "€", SymbolBefore: true, Thousands: ".", Decimal: ","},
}

// ConventionFor returns the rendering convention for a currency code, falling
// back to the TRY convention for unknown codes.
func ConventionFor(code string) Convention {
	if c, ok := conventions[strings.ToUpper(code)]; ok {
		return c
	}
	return conventions[DefaultCode]
}

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// Kind selects the sign behavior of FormatSigned.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	// KindAuto derives the sign from the amount itself.
	KindAuto Kind = "auto"
)

// Format renders an amount for display with the currency symbol and two
// decimal places. The output round-trips through Parse.
func Format(amount decimal.Decimal, code string) string {
	return FormatWithPrecision(amount, code, 2)
}

// FormatWithPrecision is Format with an explicit number of decimal places.
func FormatWithPrecision(amount decimal.Decimal, code string, places int32) string {
	conv := ConventionFor(code)

	var sign string
	if amount.IsNegative() {
		sign = "-"
	}

	fixed := amount.Abs().StringFixed(places)
	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	if conv.SymbolBefore {
		b.WriteString(conv.Symbol)
	}
	b.WriteString(group(intPart, conv.Thousands))
	if hasFrac {
		b.WriteString(conv.Decimal)
		b.WriteString(fracPart)
	}
	if !conv.SymbolBefore {
		b.WriteString(conv.Symbol)
	}
	return b.String()
}

// FormatTyping re-formats partial user input on every keystroke: everything
// except digits and a single decimal separator is stripped, the integer part
// is regrouped, and the fraction is capped at two digits.
//
// The function is idempotent; feeding its own output back yields the same
// string.
func FormatTyping(raw, code string) string {
	conv := ConventionFor(code)

	var intDigits, fracDigits strings.Builder
	seenDecimal := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			if seenDecimal {
				if fracDigits.Len() < 2 {
					fracDigits.WriteRune(r)
				}
			} else {
				intDigits.WriteRune(r)
			}
		case string(r) == conv.Decimal && !seenDecimal:
			seenDecimal = true
		}
	}

	intPart := strings.TrimLeft(intDigits.String(), "0")
	if intPart == "" {
		if intDigits.Len() == 0 && !seenDecimal {
			return ""
		}
		intPart = "0"
	}

	out := group(intPart, conv.Thousands)
	if seenDecimal {
		out += conv.Decimal + fracDigits.String()
	}
	return out
}

// Parse is the inverse of Format and FormatTyping. Empty or unparseable input
// yields zero; it never returns an error.
func Parse(text, code string) decimal.Decimal {
	conv := ConventionFor(code)

	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, conv.Symbol, "")
	s = strings.ReplaceAll(s, conv.Thousands, "")
	s = strings.Replace(s, conv.Decimal, ".", 1)

	var b strings.Builder
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || (r == '-' && i == 0) {
			b.WriteRune(r)
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatSigned renders the absolute value with an explicit +/- prefix:
// income is always "+", expense always "-", and KindAuto follows the sign of
// the amount (zero counts as positive).
func FormatSigned(amount decimal.Decimal, code string, kind Kind) string {
	sign := "+"
	switch kind {
	case KindExpense:
		sign = "-"
	case KindIncome:
		sign = "+"
	default:
		if amount.IsNegative() {
			sign = "-"
		}
	}
	return sign + Format(amount.Abs(), code)
}

// FormatCompact abbreviates large amounts with K/M suffixes, preserving the
// sign: 1500000 -> "₺1.5M", -2500 -> "-₺2.5K". Amounts below a thousand fall
// back to the full display form. The compact form always uses a "." decimal
// point regardless of locale.
func FormatCompact(amount decimal.Decimal, code string) string {
	abs := amount.Abs()
	if abs.LessThan(thousand) {
		return Format(amount, code)
	}

	conv := ConventionFor(code)
	var sign string
	if amount.IsNegative() {
		sign = "-"
	}

	unit := thousand
	suffix := "K"
	if abs.GreaterThanOrEqual(million) {
		unit = million
		suffix = "M"
	}

	scaled := abs.DivRound(unit, 1)
	// Rounding can push the scaled value to 1000 (999999 -> "1000.0K"), in
	// which case the amount reads better in the next unit up.
	if suffix == "K" && scaled.GreaterThanOrEqual(thousand) {
		unit = million
		suffix = "M"
		scaled = abs.DivRound(unit, 1)
	}
	value := scaled.String()
	value = strings.TrimSuffix(value, ".0")

	if conv.SymbolBefore {
		return sign + conv.Symbol + value + suffix
	}
	return sign + value + suffix + conv.Symbol
}

// group inserts the thousands separator into a bare digit string.
func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
