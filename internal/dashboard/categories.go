package dashboard

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

type Style struct {
	Icon  string
	Color text.Colors
}

var defaultStyle = Style{Icon: "🛒", Color: text.Colors{text.FgHiBlack}}

var categoryStyles = map[string]Style{
	"produce":   {Icon: "🥬", Color: text.Colors{text.FgGreen}},
	"dairy":     {Icon: "🥛", Color: text.Colors{text.FgHiBlue}},
	"meat":      {Icon: "🥩", Color: text.Colors{text.FgRed}},
	"bakery":    {Icon: "🍞", Color: text.Colors{text.FgYellow}},
	"frozen":    {Icon: "🧊", Color: text.Colors{text.FgCyan}},
	"pantry":    {Icon: "🥫", Color: text.Colors{text.FgMagenta}},
	"beverages": {Icon: "🥤", Color: text.Colors{text.FgHiCyan}},
	"snacks":    {Icon: "🍿", Color: text.Colors{text.FgHiYellow}},
}

// CategoryStyle looks up the icon and colour of a category, case-insensitively.
// Unknown or empty categories get the default style.
func CategoryStyle(name string) Style {
	if s, ok := categoryStyles[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s
	}
	return defaultStyle
}
