package domain

import "sort"

// ConceptSpec is one authored concept of a discipline template.
type ConceptSpec struct {
	Title          string     `json:"title"`
	Level          Level      `json:"level"`
	Bloom          BloomLevel `json:"bloom"`
	Sequence       int        `json:"sequence"`
	Difficulty     float64    `json:"difficulty"`
	Hours          float64    `json:"hours"`
	Standards      []string   `json:"standards,omitempty"`
	Objectives     []string   `json:"objectives,omitempty"`
	Keywords       []string   `json:"keywords,omitempty"`
	SourceBooks    []string   `json:"source_books,omitempty"`
	SourceChapters []string   `json:"source_chapters,omitempty"`
}

// DisciplineTemplate is the hand-curated curriculum for one discipline. It is
// immutable once loaded.
type DisciplineTemplate struct {
	Discipline  string
	Description string
	// CategoryProgression is the intended teaching order of categories.
	CategoryProgression []string
	// CategoryPrerequisites maps a category to the categories that must be
	// mastered first.
	CategoryPrerequisites map[string][]string
	// CategoryDescriptions holds optional per-category blurbs.
	CategoryDescriptions map[string]string

	curriculum map[string][]ConceptSpec
}

// NewDisciplineTemplate assembles a template. The curriculum map is copied.
func NewDisciplineTemplate(discipline, description string, progression []string, prerequisites map[string][]string, curriculum map[string][]ConceptSpec) *DisciplineTemplate {
	t := &DisciplineTemplate{
		Discipline:            discipline,
		Description:           description,
		CategoryProgression:   append([]string(nil), progression...),
		CategoryPrerequisites: make(map[string][]string, len(prerequisites)),
		CategoryDescriptions:  map[string]string{},
		curriculum:            make(map[string][]ConceptSpec, len(curriculum)),
	}
	for k, v := range prerequisites {
		t.CategoryPrerequisites[k] = append([]string(nil), v...)
	}
	for k, v := range curriculum {
		t.curriculum[k] = append([]ConceptSpec(nil), v...)
	}
	return t
}

// DetailedCurriculum returns, for each category of the progression that has
// concepts, its concept specs sorted by sequence. The result is a copy.
func (t *DisciplineTemplate) DetailedCurriculum() map[string][]ConceptSpec {
	out := make(map[string][]ConceptSpec, len(t.curriculum))
	for _, category := range t.CategoryProgression {
		specs, ok := t.curriculum[category]
		if !ok || len(specs) == 0 {
			continue
		}
		cp := append([]ConceptSpec(nil), specs...)
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].Sequence < cp[j].Sequence })
		out[category] = cp
	}
	return out
}

// PrerequisitesOf returns the declared prerequisite categories of category.
func (t *DisciplineTemplate) PrerequisitesOf(category string) []string {
	return append([]string(nil), t.CategoryPrerequisites[category]...)
}

// CategoryIndex returns the position of category in the progression, or -1.
func (t *DisciplineTemplate) CategoryIndex(category string) int {
	for i, c := range t.CategoryProgression {
		if c == category {
			return i
		}
	}
	return -1
}

// TemplateRegistry resolves a discipline name to its template.
type TemplateRegistry interface {
	// Lookup returns the template for discipline; ok is false when the
	// discipline is not supported.
	Lookup(discipline string) (tpl *DisciplineTemplate, ok bool)
	// Disciplines lists the supported discipline names.
	Disciplines() []string
}
