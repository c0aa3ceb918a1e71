package output

import (
	"fmt"
	"strings"
)

// PercentBar renders a bar for a 0-100 value, colored by whether a high
// value is good (collection rate) or bad (budget utilization).
// Example: "████████░░ 80%"
func PercentBar(percent float64, width int, higherIsBetter bool) string {
	if width <= 0 {
		width = 20
	}
	filled := int((percent / 100.0) * float64(width))
	filled = min(max(filled, 0), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	score := percent
	if !higherIsBetter {
		score = 100 - percent
	}
	style := StyleError
	switch {
	case score >= 70:
		style = StyleSuccess
	case score >= 40:
		style = StyleWarning
	}

	return fmt.Sprintf("%s %s", style.Render(bar), StyleMuted.Render(fmt.Sprintf("%.0f%%", percent)))
}

// Money formats an amount with two decimals and thousands separators.
func Money(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%.2f", amount)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sign + "$" + sb.String() + frac
}

// Metric renders a label/value pair on one line.
func Metric(label, value string) string {
	return fmt.Sprintf(" %s %s", StyleLabel.Render(label), value)
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
