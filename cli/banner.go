package cli

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/amp-labs/winedispenser/envutil"
)

const (
	boxTopLeft     = "╒"
	boxBottomLeft  = "└"
	boxTopRight    = "╕"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	ellipsis       = "…"
)

const (
	AlignLeft = iota
	AlignCenter
	AlignRight

	bannerPadding   = 2
	truncateReserve = 1
	halfDivisor     = 2
)

// DefaultWidth is the banner width used by the simulator.
const DefaultWidth = 64

// EnvNoBanner disables the box drawing when set to true.
const EnvNoBanner = "DISPENSER_NO_BANNER"

func bannerSuppressed() bool {
	return envutil.Bool(EnvNoBanner, envutil.Default(false)).ValueOrElse(false)
}

// Banner draws s inside a box of the given width. Lines that do not fit are
// truncated with an ellipsis. An unknown alignment or a width too small for
// the box yields an empty string.
func Banner(s string, width int, alignment int) string {
	if bannerSuppressed() {
		return s + "\n"
	}

	if width <= bannerPadding {
		return ""
	}

	inner := width - bannerPadding
	parts := []string{boxTopLeft + strings.Repeat(boxTop, inner) + boxTopRight}

	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		var line string

		switch alignment {
		case AlignCenter:
			line = pad(l, inner, halfDivisor)
		case AlignLeft:
			line = pad(l, inner, 0)
		case AlignRight:
			line = pad(l, inner, 1)
		default:
			return ""
		}

		parts = append(parts, boxSide+line+boxSide)
	}

	parts = append(parts, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)

	return strings.Join(parts, "\n") + "\n"
}

func countGraphic(s string) int {
	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			count++
		}
	}

	return count
}

func truncateGraphic(s string, n int) (string, int) {
	var sb strings.Builder

	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			if count == n {
				break
			}

			count++
		}

		sb.WriteRune(r)
	}

	return sb.String(), count
}

// pad fills text to width. leftShare selects how the slack is split: 0 puts
// it all on the right, 1 all on the left, 2 half on each side.
func pad(text string, width int, leftShare int) string {
	length := countGraphic(text)

	if length > width {
		text, length = truncateGraphic(text, width-truncateReserve)
		text += ellipsis
		length++
	}

	diff := width - length

	var left int

	switch leftShare {
	case 0:
		left = 0
	case 1:
		left = diff
	default:
		left = diff / leftShare
	}

	return fmt.Sprintf("%s%s%s", strings.Repeat(" ", left), text, strings.Repeat(" ", diff-left))
}
