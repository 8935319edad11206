package models

import "time"

// CurriculumBuild is one row of curriculum_builds.
type CurriculumBuild struct {
	ID            string    `db:"id"`
	Discipline    string    `db:"discipline"`
	TotalConcepts int       `db:"total_concepts"`
	Categories    int       `db:"categories"`
	GraphPath     string    `db:"graph_path"`
	HeatmapPath   string    `db:"heatmap_path"`
	TablePath     string    `db:"table_path"`
	SnapshotPath  string    `db:"snapshot_path"`
	GeneratedAt   time.Time `db:"generated_at"`
}

func (CurriculumBuild) TableName() string {
	return "curriculum_builds"
}

// CurriculumConcept is one row of curriculum_concepts.
type CurriculumConcept struct {
	BuildID        string      `db:"build_id"`
	ConceptID      string      `db:"concept_id"`
	Title          string      `db:"title"`
	Description    string      `db:"description"`
	Category       string      `db:"category"`
	Subtopic       string      `db:"subtopic"`
	Level          string      `db:"edu_level"`
	Bloom          string      `db:"bloom"`
	Standards      StringSlice `db:"standards"`
	Prerequisites  StringSlice `db:"prerequisites"`
	Objectives     StringSlice `db:"objectives"`
	Difficulty     float64     `db:"difficulty"`
	Hours          float64     `db:"hours"`
	SourceBooks    StringSlice `db:"source_books"`
	SourceChapters StringSlice `db:"source_chapters"`
	Keywords       StringSlice `db:"keywords"`
	SequenceOrder  int         `db:"sequence_order"`
	CategoryOrder  int         `db:"category_order"`
	CreatedAt      time.Time   `db:"created_at"`
}

func (CurriculumConcept) TableName() string {
	return "curriculum_concepts"
}
