package charts

import (
	"fmt"
	"math"

	"aduan/internal/analytics"
	"aduan/internal/report"

	"github.com/fogleman/gg"
)

// Chart canvas size
const (
	chartWidth  = 1200
	chartHeight = 800
	chartMargin = 60.0
	labelFontSz = 24
)

// RenderStatusPie draws the status breakdown as a donut with a legend.
func RenderStatusPie(buckets []analytics.Bucket) ([]byte, error) {
	total := 0
	for _, b := range buckets {
		total += b.Value
	}
	if total == 0 {
		return nil, ErrNoData
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	top, err := drawFrame(dc, "Agihan Status Aduan")
	if err != nil {
		return nil, err
	}

	cx := float64(chartWidth) * 0.38
	cy := top + (float64(chartHeight)-top)/2
	outer := math.Min(cx, float64(chartHeight)-top) / 2.4
	inner := outer * 0.6

	angle := -math.Pi / 2
	for _, b := range buckets {
		sweep := 2 * math.Pi * float64(b.Value) / float64(total)
		dc.SetColor(StatusColor(report.Status(b.Name)))
		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, outer, angle, angle+sweep)
		dc.ClosePath()
		dc.Fill()
		angle += sweep
	}

	// Donut hole
	dc.SetColor(bgColor)
	dc.DrawCircle(cx, cy, inner)
	dc.Fill()

	setFace(dc, true, titleFontSz)
	dc.SetColor(titleColor)
	dc.DrawStringAnchored(fmt.Sprintf("%d", total), cx, cy, 0.5, 0.5)

	// Legend
	setFace(dc, false, labelFontSz)
	lx := float64(chartWidth) * 0.68
	ly := cy - float64(len(buckets))*25
	for _, b := range buckets {
		dc.SetColor(StatusColor(report.Status(b.Name)))
		dc.DrawRoundedRectangle(lx, ly-14, 28, 28, 6)
		dc.Fill()
		dc.SetColor(textColor)
		dc.DrawStringAnchored(fmt.Sprintf("%s (%d)", b.Name, b.Value), lx+44, ly, 0, 0.5)
		ly += 50
	}

	return encodeImage(dc.Image())
}

// RenderTopLocations draws a horizontal bar chart of the busiest locations.
func RenderTopLocations(buckets []analytics.Bucket) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, ErrNoData
	}
	maxValue := 0
	for _, b := range buckets {
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	top, err := drawFrame(dc, "Top 5 Lokasi Kerosakan")
	if err != nil {
		return nil, err
	}

	setFace(dc, false, labelFontSz)
	labelWidth := 300.0
	plotX := chartMargin + labelWidth
	plotW := float64(chartWidth) - plotX - chartMargin - 60
	slot := (float64(chartHeight) - top - chartMargin) / float64(len(buckets))
	barH := math.Min(60, slot*0.6)

	for i, b := range buckets {
		y := top + float64(i)*slot + (slot-barH)/2

		dc.SetColor(textColor)
		dc.DrawStringAnchored(truncate(b.Name, 22), plotX-16, y+barH/2, 1, 0.5)

		w := plotW * float64(b.Value) / float64(maxValue)
		dc.SetColor(accentColor)
		dc.DrawRoundedRectangle(plotX, y, w, barH, 8)
		dc.Fill()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(fmt.Sprintf("%d", b.Value), plotX+w+12, y+barH/2, 0, 0.5)
	}

	return encodeImage(dc.Image())
}

// RenderMonthlyTrend draws the monthly report counts as a filled line chart.
func RenderMonthlyTrend(buckets []analytics.Bucket) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, ErrNoData
	}
	maxValue := 1
	for _, b := range buckets {
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	top, err := drawFrame(dc, "Trend Aduan Bulanan")
	if err != nil {
		return nil, err
	}

	plotX := chartMargin + 40
	plotY := top
	plotW := float64(chartWidth) - plotX - chartMargin
	plotH := float64(chartHeight) - plotY - chartMargin - 30

	// Horizontal grid with value labels
	setFace(dc, false, labelFontSz)
	steps := 4
	for i := 0; i <= steps; i++ {
		y := plotY + plotH - plotH*float64(i)/float64(steps)
		dc.SetColor(gridColor)
		dc.SetLineWidth(2)
		dc.DrawLine(plotX, y, plotX+plotW, y)
		dc.Stroke()
		dc.SetColor(footerColor)
		v := float64(maxValue) * float64(i) / float64(steps)
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), plotX-12, y, 1, 0.5)
	}

	point := func(i int) (float64, float64) {
		x := plotX + plotW/2
		if len(buckets) > 1 {
			x = plotX + plotW*float64(i)/float64(len(buckets)-1)
		}
		y := plotY + plotH - plotH*float64(buckets[i].Value)/float64(maxValue)
		return x, y
	}

	// Area fill
	fill := accentColor
	fill.A = 40
	dc.SetColor(fill)
	x0, _ := point(0)
	dc.MoveTo(x0, plotY+plotH)
	for i := range buckets {
		dc.LineTo(point(i))
	}
	xn, _ := point(len(buckets) - 1)
	dc.LineTo(xn, plotY+plotH)
	dc.ClosePath()
	dc.Fill()

	// Line and markers
	dc.SetColor(accentColor)
	dc.SetLineWidth(6)
	for i := range buckets {
		x, y := point(i)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	for i, b := range buckets {
		x, y := point(i)
		dc.SetColor(accentColor)
		dc.DrawCircle(x, y, 8)
		dc.Fill()
		dc.SetColor(textColor)
		dc.DrawStringAnchored(b.Name, x, plotY+plotH+30, 0.5, 0.5)
	}

	return encodeImage(dc.Image())
}
