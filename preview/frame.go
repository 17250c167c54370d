package preview

import (
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// frameRenderer turns an RGBA frame into terminal text. In colour modes
// each cell is "▀" with the top pixel as foreground and the bottom pixel
// as background, so a cell row holds two pixel rows.
type frameRenderer struct {
	mode   colorMode
	sb     strings.Builder
	scaled *image.RGBA
}

func newFrameRenderer(mode colorMode) *frameRenderer {
	return &frameRenderer{mode: mode}
}

// pixelRows is the number of pixel rows rows cells display.
func (r *frameRenderer) pixelRows(rows int) int {
	if r.mode == colorOff {
		return rows
	}
	return rows * 2
}

// Render scales img to cols×rows cells.
func (r *frameRenderer) Render(img *image.RGBA, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 || img.Rect.Empty() {
		return ""
	}
	rect := image.Rect(0, 0, cols, r.pixelRows(rows))
	if r.scaled == nil || !r.scaled.Rect.Eq(rect) {
		r.scaled = image.NewRGBA(rect)
	}
	draw.ApproxBiLinear.Scale(r.scaled, rect, img, img.Rect, draw.Src, nil)

	r.sb.Reset()
	r.sb.Grow(cols * rows * 24)
	if r.mode == colorOff {
		r.renderASCII(cols, rows)
	} else {
		r.renderHalfBlock(cols, rows)
	}
	return r.sb.String()
}

func (r *frameRenderer) pixel(x, y int) (uint8, uint8, uint8) {
	o := y*r.scaled.Stride + x*4
	p := r.scaled.Pix[o : o+3 : o+3]
	return p[0], p[1], p[2]
}

func (r *frameRenderer) renderHalfBlock(cols, rows int) {
	var lastFg, lastBg string
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			tr, tg, tb := r.pixel(col, row*2)
			br, bg, bb := r.pixel(col, row*2+1)
			fg := fgColorSeq(r.mode, tr, tg, tb)
			bgc := bgColorSeq(r.mode, br, bg, bb)
			if fg != lastFg {
				r.sb.WriteString(fg)
				lastFg = fg
			}
			if bgc != lastBg {
				r.sb.WriteString(bgc)
				lastBg = bgc
			}
			r.sb.WriteString("▀")
		}
		r.sb.WriteString(ansiReset)
		lastFg, lastBg = "", ""
		if row < rows-1 {
			r.sb.WriteByte('\n')
		}
	}
}

func (r *frameRenderer) renderASCII(cols, rows int) {
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r.sb.WriteByte(brightnessChar(luminance(r.pixel(col, row))))
		}
		if row < rows-1 {
			r.sb.WriteByte('\n')
		}
	}
}
