package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// GroupSeparator is inserted between digit groups.
const GroupSeparator = ","

var countPrinter = message.NewPrinter(language.English)

// FormatNumber renders v as text and inserts GroupSeparator before every run
// of digits whose length is a positive multiple of three and which is not at
// a word boundary. The rule is applied to the whole string, so fractional
// digits are grouped too: FormatNumber(1234.5678) is "1,234.5,678". Use
// FormatCount for sign and decimal aware integer grouping.
func FormatNumber(v any) string {
	return groupDigits(numberText(v))
}

// FormatCount renders n with English digit grouping.
func FormatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}

// numberText stringifies v the way a page script would: integers in base 10
// and floats in their shortest round-trip decimal form.
func numberText(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", n)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", n)
	case float32:
		return floatText(float64(n), 32)
	case float64:
		return floatText(n, 64)
	case fmt.Stringer:
		return n.String()
	default:
		return fmt.Sprint(v)
	}
}

func floatText(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21, f != 0 && math.Abs(f) < 1e-6:
		return exponentText(strconv.FormatFloat(f, 'e', -1, bits))
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// exponentText rewrites "1e-07" as "1e-7", keeping the sign of the exponent.
func exponentText(s string) string {
	mant, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + exp[:1] + digits
}

func groupDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/3)
	for i := 0; i < len(s); i++ {
		if i > 0 && !isBoundary(s, i) && digitRun(s, i)%3 == 0 && isDigit(s[i]) {
			b.WriteString(GroupSeparator)
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// digitRun counts the consecutive digits starting at i.
func digitRun(s string, i int) int {
	n := 0
	for i+n < len(s) && isDigit(s[i+n]) {
		n++
	}
	return n
}

func isBoundary(s string, i int) bool {
	return isWordChar(s, i-1) != isWordChar(s, i)
}

func isWordChar(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
