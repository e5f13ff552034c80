package renderer

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/df07/go-optical-bench/pkg/core"
	"github.com/df07/go-optical-bench/pkg/geometry"
	"github.com/df07/go-optical-bench/pkg/scene"
)

// rayPalette colours traces by source index
var rayPalette = []color.RGBA{
	{R: 220, G: 40, B: 40, A: 255},
	{R: 30, G: 110, B: 220, A: 255},
	{R: 20, G: 150, B: 70, A: 255},
	{R: 230, G: 130, B: 0, A: 255},
	{R: 140, G: 60, B: 180, A: 255},
	{R: 0, G: 150, B: 160, A: 255},
	{R: 200, G: 60, B: 140, A: 255},
}

// Canvas draws a bench in image space. Bench coordinates have y pointing up; the view is
// scaled uniformly to fit the bench bounds and centred in the image.
type Canvas struct {
	dc     *gg.Context
	bounds core.Rect
	scale  float64
	offX   float64
	offY   float64
}

// NewCanvas creates a white canvas of the given pixel size showing bounds
func NewCanvas(width, height int, bounds core.Rect) *Canvas {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	scale := math.Min(float64(width)/bounds.Width(), float64(height)/bounds.Height())
	return &Canvas{
		dc:     dc,
		bounds: bounds,
		scale:  scale,
		offX:   (float64(width) - bounds.Width()*scale) / 2,
		offY:   (float64(height) - bounds.Height()*scale) / 2,
	}
}

// ToImage maps a bench point to image coordinates
func (c *Canvas) ToImage(p core.Point) (float64, float64) {
	x := (p.X-c.bounds.Min.X)*c.scale + c.offX
	y := (c.bounds.Max.Y-p.Y)*c.scale + c.offY
	return x, y
}

// DrawBench draws the bounds, the optical axis, every element and the traces
func (c *Canvas) DrawBench(s *scene.Scene, traces []scene.Trace) {
	c.drawBounds()
	c.drawAxis()
	for _, el := range s.Elements() {
		c.DrawElement(el)
	}
	for i, tr := range traces {
		c.DrawTrace(tr, rayPalette[i%len(rayPalette)])
	}
}

func (c *Canvas) drawBounds() {
	x0, y0 := c.ToImage(core.NewPoint(c.bounds.Min.X, c.bounds.Max.Y))
	c.dc.DrawRectangle(x0, y0, c.bounds.Width()*c.scale, c.bounds.Height()*c.scale)
	c.dc.SetRGB(0.6, 0.6, 0.6)
	c.dc.SetLineWidth(1)
	c.dc.Stroke()
}

// drawAxis draws the y = 0 line when it is inside the bounds
func (c *Canvas) drawAxis() {
	if c.bounds.Min.Y > 0 || c.bounds.Max.Y < 0 {
		return
	}
	x0, y := c.ToImage(core.NewPoint(c.bounds.Min.X, 0))
	x1, _ := c.ToImage(core.NewPoint(c.bounds.Max.X, 0))
	c.dc.SetDash(6, 4)
	c.dc.DrawLine(x0, y, x1, y)
	c.dc.SetRGB(0.75, 0.75, 0.75)
	c.dc.SetLineWidth(1)
	c.dc.Stroke()
	c.dc.SetDash()
}

// DrawElement fills and outlines an element
func (c *Canvas) DrawElement(el geometry.Element) {
	c.tracePath(el.Boundaries())
	c.dc.ClosePath()
	c.dc.SetRGBA(0.55, 0.75, 0.95, 0.35)
	c.dc.FillPreserve()
	c.dc.SetRGB(0.15, 0.3, 0.5)
	c.dc.SetLineWidth(2)
	c.dc.Stroke()
}

// tracePath adds the element outline to the current path. Edges are chained end to end,
// each one walked from whichever endpoint is nearer the end of the previous edge.
func (c *Canvas) tracePath(boundaries []geometry.Boundary) {
	if len(boundaries) == 0 {
		return
	}
	c.dc.NewSubPath()
	cur := boundaries[0].From
	c.dc.MoveTo(c.ToImage(cur))

	for _, b := range boundaries {
		from, to := b.From, b.To
		if cur.Distance(to) < cur.Distance(from) {
			from, to = to, from
		}
		c.dc.LineTo(c.ToImage(from))
		if b.Arc == nil {
			c.dc.LineTo(c.ToImage(to))
			cur = to
			continue
		}

		// Image space mirrors y, so a bench angle a is -a on the canvas
		cx, cy := c.ToImage(b.Arc.Center)
		r := b.Arc.Radius * c.scale
		start := math.Atan2(from.Y-b.Arc.Center.Y, from.X-b.Arc.Center.X)
		if math.Abs(normalizeAngle(start-b.Arc.Start)) < math.Abs(normalizeAngle(start-b.Arc.End)) {
			c.dc.DrawArc(cx, cy, r, -b.Arc.Start, -b.Arc.End)
		} else {
			c.dc.DrawArc(cx, cy, r, -b.Arc.End, -b.Arc.Start)
		}
		cur = to
	}
}

// normalizeAngle maps a to (-π, π]
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// DrawTrace draws the segments of a trace and marks where it ended
func (c *Canvas) DrawTrace(tr scene.Trace, col color.RGBA) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(1.5)
	for _, seg := range tr.Segments {
		x0, y0 := c.ToImage(seg.From)
		x1, y1 := c.ToImage(seg.To)
		c.dc.DrawLine(x0, y0, x1, y1)
		c.dc.Stroke()
	}

	if len(tr.Segments) > 0 {
		x, y := c.ToImage(tr.Segments[0].From)
		c.dc.DrawCircle(x, y, 4)
		c.dc.Fill()
	}
	for _, ev := range tr.Events {
		if ev.Kind != scene.EventReflect && ev.Kind != scene.EventDepthLimit {
			continue
		}
		x, y := c.ToImage(ev.Point)
		c.dc.DrawCircle(x, y, 3)
		c.dc.Stroke()
	}
}

// Image returns the canvas contents
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the canvas to w as PNG
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// SavePNG writes the canvas to a PNG file
func (c *Canvas) SavePNG(path string) error {
	return c.dc.SavePNG(path)
}
