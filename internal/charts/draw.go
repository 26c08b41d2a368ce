// Package charts renders the analytics series and the report listing as PNG
// images.
//
// Fonts are the Go fonts compiled into the binary, so rendering does not
// depend on what is installed on the host.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"unicode/utf8"

	"aduan/internal/report"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to render")

// Light theme colors
var (
	bgColor         = color.RGBA{R: 245, G: 247, B: 250, A: 255} // Light gray bg
	titleColor      = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	headerBgColor   = color.RGBA{R: 37, G: 99, B: 235, A: 255}   // Blue
	headerTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowEvenColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowOddColor     = color.RGBA{R: 241, G: 245, B: 249, A: 255} // Subtle blue-gray
	textColor       = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	borderColor     = color.RGBA{R: 203, G: 213, B: 225, A: 255} // Slate border
	gridColor       = color.RGBA{R: 241, G: 245, B: 249, A: 255}
	footerColor     = color.RGBA{R: 100, G: 116, B: 139, A: 255} // Muted slate
	accentColor     = color.RGBA{R: 59, G: 130, B: 246, A: 255}  // #3b82f6
)

// StatusColor returns the chart colour of a status.
func StatusColor(s report.Status) color.RGBA {
	switch s {
	case report.StatusNew:
		return color.RGBA{R: 59, G: 130, B: 246, A: 255} // #3b82f6
	case report.StatusInProgress:
		return color.RGBA{R: 234, G: 179, B: 8, A: 255} // #eab308
	case report.StatusDone:
		return color.RGBA{R: 34, G: 197, B: 94, A: 255} // #22c55e
	case report.StatusRejected:
		return color.RGBA{R: 239, G: 68, B: 68, A: 255} // #ef4444
	}
	return color.RGBA{R: 148, G: 163, B: 184, A: 255}
}

var (
	fontOnce    sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontErr     error
)

func loadFonts() error {
	fontOnce.Do(func() {
		regularFont, fontErr = truetype.Parse(goregular.TTF)
		if fontErr != nil {
			return
		}
		boldFont, fontErr = truetype.Parse(gobold.TTF)
	})
	return fontErr
}

// face returns a font face of the given size.
func face(bold bool, size float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	f := regularFont
	if bold {
		f = boldFont
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// setFace switches dc to the given font.
func setFace(dc *gg.Context, bold bool, size float64) error {
	f, err := face(bold, size)
	if err != nil {
		return err
	}
	dc.SetFontFace(f)
	return nil
}

// wrapText splits text into multiple lines to fit within maxWidth.
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.TrimSpace(text)

	if maxWidth <= 0 {
		return []string{text}
	}

	w, _ := dc.MeasureString(text)
	if w <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	currentLine := words[0]

	for _, word := range words[1:] {
		testLine := currentLine + " " + word
		tw, _ := dc.MeasureString(testLine)
		if tw > maxWidth {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine = testLine
		}
	}
	lines = append(lines, currentLine)
	return lines
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLen {
		runes := []rune(s)
		return string(runes[:maxLen]) + "…"
	}
	return s
}

// drawFrame paints the background and a centred title, returning the y
// coordinate where content starts.
func drawFrame(dc *gg.Context, title string) (float64, error) {
	dc.SetColor(bgColor)
	dc.Clear()

	if err := setFace(dc, true, titleFontSz); err != nil {
		return 0, err
	}
	dc.SetColor(titleColor)
	dc.DrawStringAnchored(title, float64(dc.Width())/2, titlePadding/2, 0.5, 0.5)
	return titlePadding, nil
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
