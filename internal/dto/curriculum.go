package dto

import (
	"time"

	"curricula/internal/domain"
)

// DisciplinesResponse lists the disciplines that can be built.
type DisciplinesResponse struct {
	Disciplines []string `json:"disciplines"`
}

// CurriculumSummaryResponse is the summary of one build.
// @Description Curriculum build summary
type CurriculumSummaryResponse struct {
	BuildID             string    `json:"build_id"`
	Discipline          string    `json:"discipline"`
	TotalConcepts       int       `json:"total_concepts"`
	Categories          int       `json:"categories"`
	CurriculumTable     string    `json:"curriculum_table"`
	GraphPath           string    `json:"graph_path"`
	HeatmapPath         string    `json:"heatmap_path"`
	SnapshotPath        string    `json:"snapshot_path"`
	GenerationTimestamp time.Time `json:"generation_timestamp"`
	TopologicalOrder    []string  `json:"topological_order,omitempty"`
}

// BuildListResponse lists the stored builds of a discipline, newest first.
type BuildListResponse struct {
	Discipline string                      `json:"discipline"`
	Builds     []CurriculumSummaryResponse `json:"builds"`
}

// BuildAllResponse is returned after building every discipline.
type BuildAllResponse struct {
	Builds []CurriculumSummaryResponse `json:"builds"`
}

// ConceptResponse is one concept of a stored build.
type ConceptResponse struct {
	ConceptID          string   `json:"concept_id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Subtopic           string   `json:"subtopic"`
	Level              string   `json:"level"`
	BloomTaxonomy      string   `json:"bloom_taxonomy"`
	Standards          []string `json:"standards"`
	Prerequisites      []string `json:"prerequisites"`
	LearningObjectives []string `json:"learning_objectives"`
	DifficultyScore    float64  `json:"difficulty_score"`
	EstimatedHours     float64  `json:"estimated_hours"`
	Keywords           []string `json:"keywords"`
	SequenceOrder      int      `json:"sequence_order"`
	CategoryOrder      int      `json:"category_order"`
}

// ConceptListResponse wraps the concepts of the latest build.
type ConceptListResponse struct {
	Discipline string            `json:"discipline"`
	Count      int               `json:"count"`
	Concepts   []ConceptResponse `json:"concepts"`
}

func ToSummaryResponse(mc *domain.MasterCurriculum) CurriculumSummaryResponse {
	return CurriculumSummaryResponse{
		BuildID:             mc.BuildID,
		Discipline:          mc.Discipline,
		TotalConcepts:       mc.TotalConcepts,
		Categories:          mc.Categories,
		CurriculumTable:     mc.CurriculumTablePath,
		GraphPath:           mc.GraphPath,
		HeatmapPath:         mc.HeatmapPath,
		SnapshotPath:        mc.SnapshotPath,
		GenerationTimestamp: mc.GenerationTimestamp,
		TopologicalOrder:    mc.TopologicalOrder,
	}
}

func ToSummaryResponses(builds []*domain.MasterCurriculum) []CurriculumSummaryResponse {
	out := make([]CurriculumSummaryResponse, 0, len(builds))
	for _, b := range builds {
		out = append(out, ToSummaryResponse(b))
	}
	return out
}

func ToConceptResponse(c *domain.CurriculumConcept) ConceptResponse {
	return ConceptResponse{
		ConceptID:          c.ConceptID,
		Title:              c.Title,
		Description:        c.Description,
		Category:           c.Category,
		Subtopic:           c.Subtopic,
		Level:              string(c.Level),
		BloomTaxonomy:      string(c.BloomTaxonomy),
		Standards:          c.Standards,
		Prerequisites:      c.Prerequisites,
		LearningObjectives: c.LearningObjectives,
		DifficultyScore:    c.DifficultyScore,
		EstimatedHours:     c.EstimatedHours,
		Keywords:           c.Keywords,
		SequenceOrder:      c.SequenceOrder,
		CategoryOrder:      c.CategoryOrder,
	}
}
