package render

import (
	"fmt"
	"math"

	"curricula/internal/domain"
	"curricula/internal/graph"

	"github.com/fogleman/gg"
)

// GraphRenderer draws the category prerequisite graph in layers: every
// column is one wave of the topological order, so edges run left to right.
type GraphRenderer struct {
	Width  int
	Height int
}

func NewGraphRenderer(width, height int) *GraphRenderer {
	if width <= 0 {
		width = 2400
	}
	if height <= 0 {
		height = 1600
	}
	return &GraphRenderer{Width: width, Height: height}
}

type placed struct {
	x, y, r float64
	node    graph.Node
}

// Render writes the graph image to path.
func (r *GraphRenderer) Render(g *graph.Directed, title, path string) error {
	layers, err := g.Layers()
	if err != nil {
		return err
	}
	f, err := loadFonts(34, 16, 14)
	if err != nil {
		return err
	}

	const (
		marginX   = 60.0
		marginTop = 110.0
		legendH   = 90.0
	)
	w, h := float64(r.Width), float64(r.Height)
	dc := gg.NewContext(r.Width, r.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	maxCount := 1
	for _, n := range g.Nodes() {
		if n.ConceptsCount > maxCount {
			maxCount = n.ConceptsCount
		}
	}

	pos := make(map[string]placed, g.NumberOfNodes())
	cols := math.Max(float64(len(layers)), 1)
	colW := (w - 2*marginX) / cols
	areaH := h - marginTop - legendH
	for i, layer := range layers {
		rowH := areaH / float64(len(layer))
		maxR := math.Min(colW*0.28, rowH*0.3)
		for j, id := range layer {
			n, _ := g.Node(id)
			radius := maxR * (0.45 + 0.55*math.Sqrt(float64(n.ConceptsCount)/float64(maxCount)))
			pos[id] = placed{
				x:    marginX + (float64(i)+0.5)*colW,
				y:    marginTop + (float64(j)+0.5)*rowH,
				r:    radius,
				node: n,
			}
		}
	}

	// Edges first so nodes cover their ends.
	dc.SetHexColor("#808080")
	dc.SetLineWidth(1.6)
	for _, e := range g.Edges() {
		drawArrow(dc, pos[e.From], pos[e.To])
	}

	for _, id := range orderedIDs(layers) {
		p := pos[id]
		dc.DrawCircle(p.x, p.y, p.r)
		dc.SetHexColor(LevelColor(p.node.Level))
		dc.FillPreserve()
		dc.SetHexColor("#333333")
		dc.SetLineWidth(1.2)
		dc.Stroke()

		dc.SetFontFace(f.small)
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(fmt.Sprintf("%d", p.node.ConceptsCount), p.x, p.y, 0.5, 0.35)

		dc.SetFontFace(f.label)
		label := p.node.Name
		if label == "" {
			label = p.node.ID
		}
		dc.DrawStringWrapped(label, p.x, p.y+p.r+4, 0.5, 0, colW*0.9, 1.15, gg.AlignCenter)
	}

	dc.SetFontFace(f.title)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, w/2, 50, 0.5, 0.5)

	drawLevelLegend(dc, f, w/2, h-legendH/2)

	return savePNG(dc, path)
}

func orderedIDs(layers [][]string) []string {
	var ids []string
	for _, l := range layers {
		ids = append(ids, l...)
	}
	return ids
}

func drawArrow(dc *gg.Context, from, to placed) {
	dx, dy := to.x-from.x, to.y-from.y
	dist := math.Hypot(dx, dy)
	if dist <= from.r+to.r {
		return
	}
	ux, uy := dx/dist, dy/dist
	sx, sy := from.x+ux*from.r, from.y+uy*from.r
	ex, ey := to.x-ux*(to.r+2), to.y-uy*(to.r+2)

	const head, halfWidth = 12.0, 5.0
	bx, by := ex-ux*head, ey-uy*head
	dc.DrawLine(sx, sy, bx, by)
	dc.Stroke()

	px, py := -uy, ux
	dc.MoveTo(ex, ey)
	dc.LineTo(bx+px*halfWidth, by+py*halfWidth)
	dc.LineTo(bx-px*halfWidth, by-py*halfWidth)
	dc.ClosePath()
	dc.Fill()
}

func drawLevelLegend(dc *gg.Context, f *fonts, cx, cy float64) {
	const itemW = 170.0
	levels := domain.AllLevels()
	x := cx - itemW*float64(len(levels))/2
	dc.SetFontFace(f.label)
	for _, l := range levels {
		dc.DrawCircle(x+12, cy, 10)
		dc.SetHexColor(LevelColor(l))
		dc.FillPreserve()
		dc.SetHexColor("#333333")
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(string(l), x+30, cy, 0, 0.35)
		x += itemW
	}
}
