package contrast

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"
)

// MinimumRatio is the WCAG AA threshold for normal-size text.
const MinimumRatio = 4.5

type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var hexColorRe = regexp.MustCompile(`#([0-9a-fA-F]{6})`)

// ParseHex finds the first #RRGGBB literal anywhere in s. Shorthand, alpha,
// named colors and functional notations are not recognized.
func ParseHex(s string) (RGB, bool) {
	m := hexColorRe.FindStringSubmatch(s)
	if m == nil {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

func linearize(channel uint8) float64 {
	c := float64(channel) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func RelativeLuminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// Ratio is always >= 1 regardless of argument order.
func Ratio(a, b RGB) float64 {
	r := (RelativeLuminance(a) + 0.05) / (RelativeLuminance(b) + 0.05)
	if r < 1 {
		r = 1 / r
	}
	return r
}

func IsLowContrast(text, background RGB) bool {
	return Ratio(text, background) < MinimumRatio
}

// InlineColors reads color and background-color from an inline style
// attribute. ok is false unless both are present as #RRGGBB values. A
// property declared twice takes its last value.
func InlineColors(style string) (text, background RGB, ok bool) {
	// The declaration parser drops the value of an unterminated last
	// declaration.
	style = strings.TrimSpace(style)
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}

	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return RGB{}, RGB{}, false
	}

	var textVal, bgVal string
	for _, d := range decls {
		switch strings.ToLower(strings.TrimSpace(d.Property)) {
		case "color":
			textVal = d.Value
		case "background-color":
			bgVal = d.Value
		}
	}

	text, okText := ParseHex(textVal)
	background, okBg := ParseHex(bgVal)
	if !okText || !okBg {
		return RGB{}, RGB{}, false
	}
	return text, background, true
}
