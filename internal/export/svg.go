// Package export writes simulation snapshots to SVG for inspection
// outside the terminal.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/gravlab/internal/body"
)

// SceneToSVG renders bodies and their trails into an SVG document of the
// given pixel size. The viewport is fitted to the scene with a small
// margin; world y grows up, SVG y grows down.
func SceneToSVG(bodies []*body.Body, width, height int) string {
	if len(bodies) == 0 {
		return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"/>`, width, height)
	}

	minX, maxX := bodies[0].Pos.X, bodies[0].Pos.X
	minY, maxY := bodies[0].Pos.Y, bodies[0].Pos.Y
	grow := func(x, y float64) {
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, b := range bodies {
		grow(b.Pos.X-b.Radius, b.Pos.Y-b.Radius)
		grow(b.Pos.X+b.Radius, b.Pos.Y+b.Radius)
		for _, p := range b.Trail {
			grow(p.X, p.Y)
		}
	}

	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	minX -= spanX * 0.05
	maxX += spanX * 0.05
	minY -= spanY * 0.05
	maxY += spanY * 0.05

	scaleX := float64(width) / (maxX - minX)
	scaleY := float64(height) / (maxY - minY)
	px := func(x float64) float64 { return (x - minX) * scaleX }
	py := func(y float64) float64 { return float64(height) - (y-minY)*scaleY }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">
<rect width="100%%" height="100%%" fill="#05050f"/>
`, width, height)

	for _, b := range bodies {
		if len(b.Trail) > 1 {
			pts := make([]string, 0, len(b.Trail))
			for _, p := range b.Trail {
				pts = append(pts, fmt.Sprintf("%.1f,%.1f", px(p.X), py(p.Y)))
			}
			fmt.Fprintf(&sb,
				`<polyline points="%s" fill="none" stroke="%s" stroke-opacity="0.5" stroke-width="1"/>`+"\n",
				strings.Join(pts, " "), colorOr(b.Color, "#646496"))
		}
	}
	for _, b := range bodies {
		r := b.Radius * scaleX
		if r < 1.5 {
			r = 1.5
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s</title></circle>`+"\n",
			px(b.Pos.X), py(b.Pos.Y), r, colorOr(b.Color, "#6496ff"), b.Name)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func colorOr(color, fallback string) string {
	if color == "" {
		return fallback
	}
	return color
}
