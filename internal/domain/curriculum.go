package domain

import (
	"sort"
	"time"
)

// CurriculumConcept is one teachable unit with its educational metadata.
type CurriculumConcept struct {
	ConceptID   string `json:"concept_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Subtopic    string `json:"subtopic"`

	Level         Level      `json:"level"`
	BloomTaxonomy BloomLevel `json:"bloom_taxonomy"`
	Standards     []string   `json:"standards"`

	Prerequisites      []string `json:"prerequisites"`
	LearningObjectives []string `json:"learning_objectives"`
	DifficultyScore    float64  `json:"difficulty_score"`
	EstimatedHours     float64  `json:"estimated_hours"`

	SourceBooks    []string `json:"source_books"`
	SourceChapters []string `json:"source_chapters"`
	Keywords       []string `json:"keywords"`

	// SequenceOrder is the position within Category, starting at 1.
	SequenceOrder int `json:"sequence_order"`
	// CategoryOrder is the index of Category in the discipline's progression.
	CategoryOrder int `json:"category_order"`

	CreatedAt time.Time `json:"created_at"`
}

// NewCurriculumConcept creates a concept with the defaults the builder relies
// on: empty (non-nil) lists and one estimated hour.
func NewCurriculumConcept(id, title, description, category, subtopic string, level Level, bloom BloomLevel) *CurriculumConcept {
	return &CurriculumConcept{
		ConceptID:          id,
		Title:              title,
		Description:        description,
		Category:           category,
		Subtopic:           subtopic,
		Level:              level,
		BloomTaxonomy:      bloom,
		Standards:          []string{},
		Prerequisites:      []string{},
		LearningObjectives: []string{},
		EstimatedHours:     1.0,
		SourceBooks:        []string{},
		SourceChapters:     []string{},
		Keywords:           []string{},
		CreatedAt:          time.Now(),
	}
}

// DifficultyRange is the closed [Min, Max] span of concept difficulty.
type DifficultyRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CategoryNode is one topic area of the curriculum graph.
type CategoryNode struct {
	CategoryID           string          `json:"category_id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	LevelFirstIntroduced Level           `json:"level_first_introduced"`
	ConceptsCount        int             `json:"concepts_count"`
	Prerequisites        []string        `json:"prerequisites"`
	DifficultyRange      DifficultyRange `json:"difficulty_range"`
	CategoryOrder        int             `json:"category_order"`
}

// NewCategoryNode returns a node with the default 0-10 difficulty range.
func NewCategoryNode(id, name, description string, firstLevel Level) *CategoryNode {
	return &CategoryNode{
		CategoryID:           id,
		Name:                 name,
		Description:          description,
		LevelFirstIntroduced: firstLevel,
		Prerequisites:        []string{},
		DifficultyRange:      DifficultyRange{Min: 0, Max: 10},
	}
}

// StandardsSeparator joins the standards of one concept in a table cell.
// Authored standards may not contain it.
const StandardsSeparator = "; "

// CurriculumTableRow is one row of the exported curriculum table.
type CurriculumTableRow struct {
	Category      string     `json:"category"`
	Subtopic      string     `json:"subtopic"`
	Level         Level      `json:"level"`
	Bloom         BloomLevel `json:"bloom"`
	Standards     []string   `json:"standards"`
	Difficulty    float64    `json:"difficulty"`
	Hours         float64    `json:"hours"`
	Sequence      int        `json:"sequence"`
	CategoryOrder int        `json:"category_order"`
	ConceptID     string     `json:"concept_id"`
}

// CurriculumTable is the full table, ordered by (CategoryOrder, Sequence).
type CurriculumTable []CurriculumTableRow

// NewCurriculumTable builds sorted table rows from concepts.
func NewCurriculumTable(concepts []*CurriculumConcept) CurriculumTable {
	rows := make(CurriculumTable, 0, len(concepts))
	for _, c := range concepts {
		standards := make([]string, len(c.Standards))
		copy(standards, c.Standards)
		rows = append(rows, CurriculumTableRow{
			Category:      c.Category,
			Subtopic:      c.Subtopic,
			Level:         c.Level,
			Bloom:         c.BloomTaxonomy,
			Standards:     standards,
			Difficulty:    c.DifficultyScore,
			Hours:         c.EstimatedHours,
			Sequence:      c.SequenceOrder,
			CategoryOrder: c.CategoryOrder,
			ConceptID:     c.ConceptID,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CategoryOrder != rows[j].CategoryOrder {
			return rows[i].CategoryOrder < rows[j].CategoryOrder
		}
		return rows[i].Sequence < rows[j].Sequence
	})
	return rows
}

// DepthMatrix counts concepts per (category, level) cell.
type DepthMatrix struct {
	Categories     []string    `json:"categories"`
	Levels         []Level     `json:"levels"`
	Counts         [][]int     `json:"counts"`
	MeanDifficulty [][]float64 `json:"mean_difficulty"`
}

// Max returns the largest cell count.
func (m *DepthMatrix) Max() int {
	max := 0
	for _, row := range m.Counts {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

// LevelTotals sums each level column across categories.
func (m *DepthMatrix) LevelTotals() []int {
	totals := make([]int, len(m.Levels))
	for _, row := range m.Counts {
		for j, v := range row {
			totals[j] += v
		}
	}
	return totals
}

// MasterCurriculum is the summary returned by a build and stored as the JSON
// snapshot. CurriculumTable is kept in memory only; the snapshot references
// the CSV file instead.
type MasterCurriculum struct {
	BuildID             string               `json:"build_id,omitempty"`
	Discipline          string               `json:"discipline"`
	TotalConcepts       int                  `json:"total_concepts"`
	Categories          int                  `json:"categories"`
	CurriculumTable     CurriculumTable      `json:"-"`
	CurriculumTablePath string               `json:"curriculum_table"`
	GraphPath           string               `json:"graph_path"`
	HeatmapPath         string               `json:"heatmap_path"`
	SnapshotPath        string               `json:"snapshot_path,omitempty"`
	GenerationTimestamp time.Time            `json:"generation_timestamp"`
	TopologicalOrder    []string             `json:"topological_order,omitempty"`
	CategoryNodes       []*CategoryNode      `json:"category_nodes,omitempty"`
	DepthMatrix         *DepthMatrix         `json:"depth_matrix,omitempty"`
	Concepts            []*CurriculumConcept `json:"concepts"`
}
