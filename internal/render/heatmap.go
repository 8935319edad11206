package render

import (
	"fmt"
	"math"

	"curricula/internal/domain"

	"github.com/fogleman/gg"
)

// ExamRelevanceLabel names the aggregate row drawn under the categories.
const ExamRelevanceLabel = "Exam relevance"

// examWeight scales the level totals that typical entrance exams cover.
const examWeight = 0.7

var examLevels = map[domain.Level]bool{
	domain.LevelHSAdv:   true,
	domain.LevelUGIntro: true,
	domain.LevelUGAdv:   true,
}

// ExamRelevance returns one value per level of m: the weighted total of
// concepts for exam-covered levels and zero elsewhere.
func ExamRelevance(m *domain.DepthMatrix) []float64 {
	totals := m.LevelTotals()
	out := make([]float64, len(m.Levels))
	for j, l := range m.Levels {
		if examLevels[l] {
			out[j] = float64(totals[j]) * examWeight
		}
	}
	return out
}

// HeatmapRenderer draws the categories x levels concept density grid.
type HeatmapRenderer struct {
	CellSize int
}

func NewHeatmapRenderer(cellSize int) *HeatmapRenderer {
	if cellSize <= 0 {
		cellSize = 72
	}
	return &HeatmapRenderer{CellSize: cellSize}
}

// Render writes the heat-map image for m to path.
func (r *HeatmapRenderer) Render(m *domain.DepthMatrix, title, path string) error {
	if len(m.Levels) == 0 {
		return fmt.Errorf("depth matrix has no levels")
	}
	f, err := loadFonts(26, 14, 12)
	if err != nil {
		return err
	}

	rows := make([][]float64, 0, len(m.Categories)+1)
	labels := make([]string, 0, len(m.Categories)+1)
	for i, c := range m.Categories {
		row := make([]float64, len(m.Levels))
		for j := range m.Levels {
			row[j] = float64(m.Counts[i][j])
		}
		rows = append(rows, row)
		labels = append(labels, c)
	}
	rows = append(rows, ExamRelevance(m))
	labels = append(labels, ExamRelevanceLabel)

	maxVal := 0.0
	for _, row := range rows {
		for _, v := range row {
			maxVal = math.Max(maxVal, v)
		}
	}

	const (
		labelW    = 300.0
		top       = 90.0
		bottom    = 90.0
		colorBarW = 130.0
		margin    = 30.0
	)
	cell := float64(r.CellSize)
	gridW := cell * float64(len(m.Levels))
	gridH := cell * float64(len(rows))
	width := int(margin + labelW + gridW + colorBarW + margin)
	height := int(top + gridH + bottom)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	x0, y0 := margin+labelW, top
	for i, row := range rows {
		for j, v := range row {
			t := 0.0
			if maxVal > 0 {
				t = v / maxVal
			}
			x, y := x0+float64(j)*cell, y0+float64(i)*cell
			dc.DrawRectangle(x, y, cell, cell)
			dc.SetColor(HeatColor(t))
			dc.FillPreserve()
			dc.SetHexColor("#ffffff")
			dc.SetLineWidth(1)
			dc.Stroke()

			if t > 0.6 {
				dc.SetRGB(1, 1, 1)
			} else {
				dc.SetRGB(0, 0, 0)
			}
			dc.SetFontFace(f.label)
			dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), x+cell/2, y+cell/2, 0.5, 0.35)
		}
		dc.SetRGB(0, 0, 0)
		dc.SetFontFace(f.label)
		dc.DrawStringAnchored(labels[i], x0-10, y0+float64(i)*cell+cell/2, 1, 0.35)
	}

	// Separator above the aggregate row.
	sepY := y0 + float64(len(m.Categories))*cell
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2)
	dc.DrawLine(x0, sepY, x0+gridW, sepY)
	dc.Stroke()

	dc.SetFontFace(f.small)
	for j, l := range m.Levels {
		dc.DrawStringAnchored(string(l), x0+float64(j)*cell+cell/2, y0+gridH+16, 0.5, 0.5)
	}
	dc.SetFontFace(f.label)
	dc.DrawStringAnchored("Educational Level", x0+gridW/2, y0+gridH+50, 0.5, 0.5)

	r.drawColorBar(dc, f, x0+gridW+30, y0, gridH, maxVal)

	dc.SetFontFace(f.title)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, float64(width)/2, top/2, 0.5, 0.5)

	return savePNG(dc, path)
}

func (r *HeatmapRenderer) drawColorBar(dc *gg.Context, f *fonts, x, y, h, maxVal float64) {
	const barW, steps = 22.0, 100
	stepH := h / steps
	for i := 0; i < steps; i++ {
		t := 1 - float64(i)/float64(steps-1)
		dc.DrawRectangle(x, y+float64(i)*stepH, barW, stepH+0.5)
		dc.SetColor(HeatColor(t))
		dc.Fill()
	}
	dc.SetHexColor("#333333")
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, y, barW, h)
	dc.Stroke()

	dc.SetFontFace(f.small)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", maxVal), x+barW+6, y, 0, 0.7)
	dc.DrawStringAnchored("0", x+barW+6, y+h, 0, 0)

	dc.Push()
	dc.RotateAbout(-math.Pi/2, x+barW+60, y+h/2)
	dc.DrawStringAnchored("Number of Concepts", x+barW+60, y+h/2, 0.5, 0.5)
	dc.Pop()
}
