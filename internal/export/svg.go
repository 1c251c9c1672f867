// Package export renders stored series as standalone SVG line charts.
package export

import (
	"fmt"
	"html"
	"strings"
)

const margin = 60

// Chart is one line series with its labels.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	X, Y   []float64
	Width  int
	Height int
	Stroke string
}

func (c Chart) withDefaults() Chart {
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 480
	}
	if c.Stroke == "" {
		c.Stroke = "#00d7ff"
	}
	return c
}

// SeriesToSVG draws Y against X. It returns an empty string for fewer than
// two points or mismatched lengths.
func SeriesToSVG(c Chart) string {
	if len(c.X) < 2 || len(c.X) != len(c.Y) {
		return ""
	}
	c = c.withDefaults()

	// Find bounds
	minX, maxX := c.X[0], c.X[0]
	minY, maxY := c.Y[0], c.Y[0]
	for i := range c.X {
		minX, maxX = min(minX, c.X[i]), max(maxX, c.X[i])
		minY, maxY = min(minY, c.Y[i]), max(maxY, c.Y[i])
	}
	dataMinY, dataMaxY := minY, maxY

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	plotW := float64(c.Width - 2*margin)
	plotH := float64(c.Height - 2*margin)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g font-family="monospace" font-size="12" fill="#c0c0c0">
<text x="%d" y="%d" text-anchor="middle" font-size="14">%s</text>
<text x="%d" y="%d" text-anchor="middle">%s</text>
<text x="14" y="%d" text-anchor="middle" transform="rotate(-90 14 %d)">%s</text>
<text x="%d" y="%d" text-anchor="end">%.4g</text>
<text x="%d" y="%d" text-anchor="end">%.4g</text>
<text x="%d" y="%d" text-anchor="start">%.4g</text>
<text x="%d" y="%d" text-anchor="end">%.4g</text>
</g>
<rect x="%d" y="%d" width="%.0f" height="%.0f" fill="none" stroke="#404040"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		c.Width, c.Height, c.Width, c.Height,
		c.Width/2, margin/2, html.EscapeString(c.Title),
		c.Width/2, c.Height-margin/4, html.EscapeString(c.XLabel),
		c.Height/2, c.Height/2, html.EscapeString(c.YLabel),
		margin-4, c.Height-margin, dataMinY,
		margin-4, margin+12, dataMaxY,
		margin, c.Height-margin+16, minX,
		c.Width-margin, c.Height-margin+16, maxX,
		margin, margin, plotW, plotH,
		c.Stroke))

	for i := range c.X {
		x := float64(margin) + (c.X[i]-minX)/rangeX*plotW
		y := float64(margin) + plotH - (c.Y[i]-minY)/rangeY*plotH

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
