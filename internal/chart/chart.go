// Package chart computes inline-SVG geometry for the overview charts.
// Templates draw the shapes; this package only places them.
package chart

import (
	"fmt"
	"strings"

	"github.com/hyperjump/ragscope/internal/models"
)

// Default canvas size in SVG user units.
const (
	DefaultWidth  = 480
	DefaultHeight = 200
	padding       = 24
)

// Point is one vertex of a line chart.
type Point struct {
	X, Y  float64
	Label string
	Value int
}

// Line is a polyline over a day series.
type Line struct {
	Width, Height float64
	Points        []Point
	Max           int
}

// NewLine lays out series on a w×h canvas. Non-positive sizes use the defaults.
func NewLine(series []models.DayCount, w, h float64) Line {
	w, h = canvas(w, h)
	l := Line{Width: w, Height: h}
	if len(series) == 0 {
		return l
	}
	for _, d := range series {
		if d.Count > l.Max {
			l.Max = d.Count
		}
	}
	innerW := w - 2*padding
	innerH := h - 2*padding
	step := 0.0
	if len(series) > 1 {
		step = innerW / float64(len(series)-1)
	}
	for i, d := range series {
		x := padding + step*float64(i)
		if len(series) == 1 {
			x = w / 2
		}
		y := h - padding
		if l.Max > 0 {
			y -= innerH * float64(d.Count) / float64(l.Max)
		}
		l.Points = append(l.Points, Point{X: x, Y: y, Label: d.Day, Value: d.Count})
	}
	return l
}

// Empty reports whether there is nothing to draw.
func (l Line) Empty() bool { return len(l.Points) == 0 }

// Polyline returns the points attribute for an SVG <polyline>.
func (l Line) Polyline() string {
	parts := make([]string, len(l.Points))
	for i, p := range l.Points {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

// Baseline is the y coordinate of the x axis.
func (l Line) Baseline() float64 { return l.Height - padding }

// LabelY is where x-axis labels sit.
func (l Line) LabelY() float64 { return l.Height - padding/3 }

// Bar is one column of a bar chart.
type Bar struct {
	X, Y, W, H float64
	Label      string
	Value      int
}

// Bars is a bar chart over mode counts.
type Bars struct {
	Width, Height float64
	Bars          []Bar
	Max           int
}

// NewBars lays out counts on a w×h canvas, one column per entry in input order.
func NewBars(counts []models.ModeCount, w, h float64) Bars {
	w, h = canvas(w, h)
	b := Bars{Width: w, Height: h}
	if len(counts) == 0 {
		return b
	}
	for _, c := range counts {
		if c.Count > b.Max {
			b.Max = c.Count
		}
	}
	innerW := w - 2*padding
	innerH := h - 2*padding
	slot := innerW / float64(len(counts))
	barW := slot * 0.6
	for i, c := range counts {
		bh := 0.0
		if b.Max > 0 {
			bh = innerH * float64(c.Count) / float64(b.Max)
		}
		b.Bars = append(b.Bars, Bar{
			X:     padding + slot*float64(i) + (slot-barW)/2,
			Y:     h - padding - bh,
			W:     barW,
			H:     bh,
			Label: c.Mode,
			Value: c.Count,
		})
	}
	return b
}

// Empty reports whether there is nothing to draw.
func (b Bars) Empty() bool { return len(b.Bars) == 0 }

// Baseline is the y coordinate of the x axis.
func (b Bars) Baseline() float64 { return b.Height - padding }

// LabelY is where x-axis labels sit.
func (b Bars) LabelY() float64 { return b.Height - padding/3 }

func canvas(w, h float64) (float64, float64) {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}
