// Package render draws the curriculum artifacts as PNG images.
package render

import (
	"fmt"
	"image/color"
	"math"

	"curricula/internal/domain"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var levelColors = map[domain.Level]string{
	domain.LevelHSFound:   "#a6cee3",
	domain.LevelHSAdv:     "#1f78b4",
	domain.LevelUGIntro:   "#b2df8a",
	domain.LevelUGAdv:     "#33a02c",
	domain.LevelGradIntro: "#fb9a99",
	domain.LevelGradAdv:   "#e31a1c",
}

const unknownLevelColor = "#cccccc"

// LevelColor returns the fill used for nodes first introduced at level.
func LevelColor(level domain.Level) string {
	if c, ok := levelColors[level]; ok {
		return c
	}
	return unknownLevelColor
}

// heatStops is the white to deep blue scale of the depth heat-map.
var heatStops = []color.RGBA{
	{0xff, 0xff, 0xff, 0xff},
	{0xf0, 0xf0, 0xf0, 0xff},
	{0xd0, 0xd0, 0xd0, 0xff},
	{0xa0, 0xa0, 0xff, 0xff},
	{0x70, 0x70, 0xff, 0xff},
	{0x40, 0x40, 0xff, 0xff},
	{0x00, 0x00, 0xff, 0xff},
}

// HeatColor maps t in [0, 1] onto the heat-map scale.
func HeatColor(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return heatStops[0]
	}
	if t >= 1 {
		return heatStops[len(heatStops)-1]
	}
	pos := t * float64(len(heatStops)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := heatStops[i], heatStops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), 0xff}
}

type fonts struct {
	title font.Face
	label font.Face
	small font.Face
}

func loadFonts(titleSize, labelSize, smallSize float64) (*fonts, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	face := func(f *truetype.Font, size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	}
	return &fonts{
		title: face(bold, titleSize),
		label: face(regular, labelSize),
		small: face(regular, smallSize),
	}, nil
}

func savePNG(dc *gg.Context, path string) error {
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
