package allocation

import (
	"strconv"
	"strings"
)

// Chart palette hex values for well-known categories.
const (
	colorInvestments = "#083C29"
	colorSavings     = "#E2F2EA"
	colorFood        = "#FF5722"
	colorEntertain   = "#7B1FA2"
	colorShopping    = "#F57C00"
	colorTravel      = "#FDD835"
	colorPersonal    = "#C2185B"
	colorUtilities   = "#0097A7"
	colorHealthcare  = "#388E3C"
	colorDefault     = "#F2E2BA"

	colorTextLight = "#E2F2EA"
	colorTextDark  = "#1A1A1A"
)

// ColorHint returns the chart background color for a category label.
func ColorHint(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "investments":
		return colorInvestments
	case "savings":
		return colorSavings
	case "food", "groceries":
		return colorFood
	case "entertainment":
		return colorEntertain
	case "shopping":
		return colorShopping
	case "travel":
		return colorTravel
	case "personal", "personal care":
		return colorPersonal
	case "utilities":
		return colorUtilities
	case "healthcare":
		return colorHealthcare
	default:
		return colorDefault
	}
}

// TextColor picks a readable text color against the given hex background
// using perceived brightness (green-weighted, as the human eye favors green).
func TextColor(backgroundHex string) string {
	hex := strings.TrimPrefix(backgroundHex, "#")
	if len(hex) < 6 {
		return colorTextLight
	}

	r := parseHexByte(hex[0:2])
	g := parseHexByte(hex[2:4])
	b := parseHexByte(hex[4:6])

	brightness := (r*299 + g*587 + b*114) / 1000
	if brightness > 155 {
		return colorTextDark
	}
	return colorTextLight
}

func parseHexByte(s string) int64 {
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0
	}
	return v
}
