package preview

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const asciiRamp = " .:-=+*#%@"

const ansiReset = "\x1b[0m"

type colorMode uint8

const (
	colorOff colorMode = iota
	colorANSI256
	colorTrue
)

var (
	detectOnce sync.Once
	termColor  colorMode
)

// detectColorMode inspects NO_COLOR, COLORTERM and TERM once.
func detectColorMode() colorMode {
	detectOnce.Do(func() {
		termColor = colorModeFor(os.Getenv("TERM"), os.Getenv("COLORTERM"), hasEnv("NO_COLOR"))
	})
	return termColor
}

func hasEnv(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

func colorModeFor(term, colorterm string, noColor bool) colorMode {
	term = strings.ToLower(term)
	colorterm = strings.ToLower(colorterm)
	switch {
	case noColor, term == "dumb", term == "":
		return colorOff
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"):
		return colorTrue
	}
	return colorANSI256
}

func brightnessChar(lum uint8) byte {
	return asciiRamp[int(lum)*(len(asciiRamp)-1)/255]
}

// luminance is ITU-R BT.601 in integer math.
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

func cube(v uint8) int {
	return int(v) * 5 / 255
}

func fgColorSeq(mode colorMode, r, g, b uint8) string {
	switch mode {
	case colorTrue:
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	case colorANSI256:
		return fmt.Sprintf("\x1b[38;5;%dm", 16+36*cube(r)+6*cube(g)+cube(b))
	}
	return ""
}

func bgColorSeq(mode colorMode, r, g, b uint8) string {
	switch mode {
	case colorTrue:
		return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
	case colorANSI256:
		return fmt.Sprintf("\x1b[48;5;%dm", 16+36*cube(r)+6*cube(g)+cube(b))
	}
	return ""
}
