package charts

import (
	"fmt"
	"time"

	"aduan/internal/report"

	"github.com/fogleman/gg"
)

// Table styling constants, rendered at 2x scale so the image stays sharp when
// forwarded to chat clients
const (
	cellPaddingX  = 20
	cellPaddingY  = 16
	minRowHeight  = 76
	headerHeight  = 88
	fontSize      = 26
	headerFontSz  = 26
	titleFontSz   = 40
	titlePadding  = 110
	footerPadding = 80
	minColWidth   = 110
	maxPlaceWidth = 360.0
	maxDescWidth  = 440.0
	maxNameWidth  = 320.0
	maxCellRunes  = 160
)

// column definition for the table.
type column struct {
	header   string
	field    func(r *report.Report) string
	maxWidth float64 // 0 means auto
}

// columns defines the table layout.
var columns = []column{
	{"ID Laporan", func(r *report.Report) string { return r.ID }, 0},
	{"Tarikh", func(r *report.Report) string { return r.ReportedAt }, 0},
	{"Nama Guru", func(r *report.Report) string { return r.TeacherName }, maxNameWidth},
	{"Tempat", func(r *report.Report) string { return r.Location }, maxPlaceWidth},
	{"Jenis Kerosakan", func(r *report.Report) string { return r.IssueDescription }, maxDescWidth},
	{"Status", func(r *report.Report) string { return string(r.Status) }, 0},
}

const statusColumn = 5

// computeRowHeights calculates the height of each row based on wrapped text.
func computeRowHeights(dc *gg.Context, reports []report.Report, colWidths []float64) []float64 {
	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4

	heights := make([]float64, len(reports))
	for rowIdx := range reports {
		r := &reports[rowIdx]
		maxLines := 1
		for i, col := range columns {
			innerWidth := colWidths[i] - cellPaddingX*2
			wrapped := wrapText(dc, truncate(col.field(r), maxCellRunes), innerWidth)
			if len(wrapped) > maxLines {
				maxLines = len(wrapped)
			}
		}
		h := float64(maxLines)*lineSpacing + cellPaddingY*2
		if h < float64(minRowHeight) {
			h = float64(minRowHeight)
		}
		heights[rowIdx] = h
	}
	return heights
}

// RenderTable renders reports as a table image and returns PNG bytes. Rows
// keep the given order.
func RenderTable(reports []report.Report, title string, generatedAt time.Time) ([]byte, error) {
	if len(reports) == 0 {
		return nil, ErrNoData
	}

	// ---- Step 1: Measure column widths ----
	tmpDC := gg.NewContext(1, 1)
	if err := setFace(tmpDC, true, headerFontSz); err != nil {
		return nil, err
	}

	colWidths := make([]float64, len(columns))
	for i, col := range columns {
		w, _ := tmpDC.MeasureString(col.header)
		colWidths[i] = w + cellPaddingX*2 + 4
		if colWidths[i] < float64(minColWidth) {
			colWidths[i] = float64(minColWidth)
		}
	}

	// Measure data widths (capped by maxWidth)
	if err := setFace(tmpDC, false, fontSize); err != nil {
		return nil, err
	}
	for rowIdx := range reports {
		r := &reports[rowIdx]
		for i, col := range columns {
			w, _ := tmpDC.MeasureString(truncate(col.field(r), maxCellRunes))
			needed := w + cellPaddingX*2 + 4
			if needed > colWidths[i] {
				colWidths[i] = needed
			}
		}
	}

	// Apply max width caps
	for i, col := range columns {
		if col.maxWidth > 0 && colWidths[i] > col.maxWidth {
			colWidths[i] = col.maxWidth
		}
	}

	rowHeights := computeRowHeights(tmpDC, reports, colWidths)

	// ---- Step 2: Calculate canvas size ----
	var totalWidth float64
	for _, w := range colWidths {
		totalWidth += w
	}

	var totalRowHeight float64
	for _, h := range rowHeights {
		totalRowHeight += h
	}

	canvasWidth := totalWidth + 80 // 40px margin each side
	canvasHeight := float64(titlePadding) +
		float64(headerHeight) +
		totalRowHeight +
		float64(footerPadding)

	// ---- Step 3: Draw ----
	dc := gg.NewContext(int(canvasWidth), int(canvasHeight))

	heading := fmt.Sprintf("%s  |  %s", title, generatedAt.Format("02/01/2006"))
	tableY, err := drawFrame(dc, heading)
	if err != nil {
		return nil, err
	}
	tableX := 40.0

	// Header row background (rounded top corners)
	dc.SetColor(headerBgColor)
	dc.DrawRoundedRectangle(tableX, tableY, totalWidth, float64(headerHeight), 16)
	dc.Fill()

	setFace(dc, true, headerFontSz)
	dc.SetColor(headerTextColor)
	x := tableX
	for i, col := range columns {
		dc.DrawStringAnchored(col.header, x+colWidths[i]/2, tableY+float64(headerHeight)/2, 0.5, 0.5)
		x += colWidths[i]
	}

	// Data rows
	setFace(dc, false, fontSize)
	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4
	curY := tableY + float64(headerHeight)

	for rowIdx := range reports {
		r := &reports[rowIdx]
		rh := rowHeights[rowIdx]

		if rowIdx%2 == 0 {
			dc.SetColor(rowEvenColor)
		} else {
			dc.SetColor(rowOddColor)
		}
		dc.DrawRectangle(tableX, curY, totalWidth, rh)
		dc.Fill()

		dc.SetColor(borderColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(tableX, curY+rh, tableX+totalWidth, curY+rh)
		dc.Stroke()

		x := tableX
		for i, col := range columns {
			innerWidth := colWidths[i] - cellPaddingX*2
			wrapped := wrapText(dc, truncate(col.field(r), maxCellRunes), innerWidth)

			if i == statusColumn {
				// Status badge
				dc.SetColor(StatusColor(r.Status))
				dc.DrawRoundedRectangle(x+cellPaddingX/2, curY+rh/2-lineH, colWidths[i]-cellPaddingX, lineH*2, 8)
				dc.Fill()
				dc.SetColor(headerTextColor)
			} else {
				dc.SetColor(textColor)
			}

			totalTextH := float64(len(wrapped)) * lineSpacing
			startY := curY + (rh-totalTextH)/2 + lineH // vertically center

			for lineIdx, line := range wrapped {
				dc.DrawString(line, x+cellPaddingX, startY+float64(lineIdx)*lineSpacing)
			}
			x += colWidths[i]
		}

		curY += rh
	}

	// Outer table border
	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	totalTableH := float64(headerHeight) + totalRowHeight
	dc.DrawRoundedRectangle(tableX, tableY, totalWidth, totalTableH, 16)
	dc.Stroke()

	// Vertical column borders
	dc.SetLineWidth(0.5)
	x = tableX
	for i := 0; i < len(columns)-1; i++ {
		x += colWidths[i]
		dc.DrawLine(x, tableY+float64(headerHeight), x, tableY+totalTableH)
		dc.Stroke()
	}

	// Footer
	setFace(dc, false, 24)
	dc.SetColor(footerColor)
	footer := fmt.Sprintf("Jumlah Aduan: %d", len(reports))
	dc.DrawStringAnchored(footer, canvasWidth/2, canvasHeight-30, 0.5, 0.5)

	// ---- Step 4: Encode to PNG ----
	return encodeImage(dc.Image())
}
