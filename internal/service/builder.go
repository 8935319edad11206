package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"curricula/internal/domain"
	"curricula/internal/export"
	"curricula/internal/graph"
	"curricula/internal/util"

	"go.uber.org/zap"
)

// CategoryGraphRenderer draws the category prerequisite graph to a PNG file.
type CategoryGraphRenderer interface {
	Render(g *graph.Directed, title, path string) error
}

// DepthHeatmapRenderer draws the categories x levels density grid to a PNG file.
type DepthHeatmapRenderer interface {
	Render(m *domain.DepthMatrix, title, path string) error
}

// Renderers groups the two image writers a build needs.
type Renderers struct {
	Graph   CategoryGraphRenderer
	Heatmap DepthHeatmapRenderer
}

// BuilderOption customizes a MasterCurriculumBuilder.
type BuilderOption func(*MasterCurriculumBuilder)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *MasterCurriculumBuilder) { b.now = now }
}

// WithBuildID sets the ID recorded in the summary.
func WithBuildID(id string) BuilderOption {
	return func(b *MasterCurriculumBuilder) { b.buildID = id }
}

// MasterCurriculumBuilder expands one discipline template into concepts,
// checks the category graph and writes the four build artifacts.
//
// A builder is not safe for concurrent use. Two builders writing to the same
// output directory overwrite each other's files; the last writer wins.
type MasterCurriculumBuilder struct {
	discipline  string
	outputDir   string
	registry    domain.TemplateRegistry
	progression *domain.EducationalProgression
	renderers   Renderers
	logger      *zap.Logger
	now         func() time.Time
	buildID     string

	template      *domain.DisciplineTemplate
	concepts      []*domain.CurriculumConcept
	categoryNodes []*domain.CategoryNode
	nodesByName   map[string]*domain.CategoryNode
	categoryGraph *graph.Directed
}

// NewMasterCurriculumBuilder creates outputDir, including parents, and
// returns a builder for discipline. A failure to create the directory is
// returned unchanged in meaning (errors.Is(err, fs.ErrPermission) holds).
func NewMasterCurriculumBuilder(
	discipline string,
	outputDir string,
	registry domain.TemplateRegistry,
	progression *domain.EducationalProgression,
	renderers Renderers,
	logger *zap.Logger,
	opts ...BuilderOption,
) (*MasterCurriculumBuilder, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", outputDir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if progression == nil {
		progression = domain.NewEducationalProgression()
	}
	b := &MasterCurriculumBuilder{
		discipline:  discipline,
		outputDir:   outputDir,
		registry:    registry,
		progression: progression,
		renderers:   renderers,
		logger:      logger.With(zap.String("discipline", discipline)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Artifact paths of this builder.
func (b *MasterCurriculumBuilder) TablePath() string {
	return filepath.Join(b.outputDir, b.discipline+"_curriculum_table.csv")
}

func (b *MasterCurriculumBuilder) GraphPath() string {
	return filepath.Join(b.outputDir, b.discipline+"_category_graph.png")
}

func (b *MasterCurriculumBuilder) HeatmapPath() string {
	return filepath.Join(b.outputDir, b.discipline+"_depth_heatmap.png")
}

func (b *MasterCurriculumBuilder) SnapshotPath() string {
	return filepath.Join(b.outputDir, b.discipline+"_master_curriculum.json")
}

// Concepts returns the concepts of the last build.
func (b *MasterCurriculumBuilder) Concepts() []*domain.CurriculumConcept { return b.concepts }

// CategoryNodes returns the category nodes of the last build in progression order.
func (b *MasterCurriculumBuilder) CategoryNodes() []*domain.CategoryNode { return b.categoryNodes }

// CategoryGraph returns the category graph of the last build.
func (b *MasterCurriculumBuilder) CategoryGraph() *graph.Directed { return b.categoryGraph }

// BuildMasterCurriculum runs the whole pipeline. Any failing step aborts the
// build and its error is returned; there is no partial result.
func (b *MasterCurriculumBuilder) BuildMasterCurriculum(ctx context.Context) (*domain.MasterCurriculum, error) {
	start := b.now()
	b.reset()

	tpl, ok := b.registry.Lookup(b.discipline)
	if !ok {
		return nil, domain.NewTemplateNotImplementedError(b.discipline)
	}
	b.template = tpl

	steps := []struct {
		name string
		run  func() error
	}{
		{"generate concepts", b.generateSequencedConcepts},
		{"build category graph", b.buildCategoryGraph},
		{"link prerequisites", b.linkConceptPrerequisites},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.run(); err != nil {
			return nil, err
		}
	}

	order, err := b.categoryGraph.TopologicalSort()
	if err != nil {
		return nil, domain.NewTemplateCycleError(b.discipline, err)
	}

	table := b.createCurriculumTable()
	if err := export.WriteCurriculumTable(b.TablePath(), table); err != nil {
		return nil, err
	}
	b.logger.Info("Wrote curriculum table", zap.Int("rows", len(table)), zap.String("path", b.TablePath()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.generateConnectivityGraph(); err != nil {
		return nil, err
	}

	matrix := b.depthMatrix()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.generateDepthHeatmap(matrix); err != nil {
		return nil, err
	}

	summary := &domain.MasterCurriculum{
		BuildID:             b.buildID,
		Discipline:          b.discipline,
		TotalConcepts:       len(b.concepts),
		Categories:          len(b.categoryNodes),
		CurriculumTable:     table,
		CurriculumTablePath: b.TablePath(),
		GraphPath:           b.GraphPath(),
		HeatmapPath:         b.HeatmapPath(),
		SnapshotPath:        b.SnapshotPath(),
		GenerationTimestamp: b.now(),
		TopologicalOrder:    order,
		CategoryNodes:       b.categoryNodes,
		DepthMatrix:         matrix,
		Concepts:            b.concepts,
	}
	if err := export.WriteSnapshot(b.SnapshotPath(), summary); err != nil {
		return nil, err
	}

	b.logger.Info("Built master curriculum",
		zap.Int("concepts", summary.TotalConcepts),
		zap.Int("categories", summary.Categories),
		zap.Duration("elapsed", b.now().Sub(start)),
	)
	return summary, nil
}

func (b *MasterCurriculumBuilder) reset() {
	b.template = nil
	b.concepts = []*domain.CurriculumConcept{}
	b.categoryNodes = nil
	b.nodesByName = map[string]*domain.CategoryNode{}
	b.categoryGraph = nil
}

// generateSequencedConcepts flattens the template into concepts ordered by
// (category order, sequence) and aggregates one node per category.
func (b *MasterCurriculumBuilder) generateSequencedConcepts() error {
	detailed := b.template.DetailedCurriculum()
	created := b.now()
	index := 0

	for catOrder, category := range b.template.CategoryProgression {
		description := b.template.CategoryDescriptions[category]
		if description == "" {
			description = fmt.Sprintf("%s concepts in %s", category, b.discipline)
		}
		node := domain.NewCategoryNode(util.Slugify(category), category, description, "")
		node.CategoryOrder = catOrder
		node.Prerequisites = b.template.PrerequisitesOf(category)

		specs := detailed[category]
		levels := make([]domain.Level, 0, len(specs))
		minD, maxD := math.Inf(1), math.Inf(-1)
		for _, spec := range specs {
			index++
			c := b.newConcept(index, category, catOrder, spec)
			c.CreatedAt = created
			b.concepts = append(b.concepts, c)

			levels = append(levels, spec.Level)
			minD = math.Min(minD, spec.Difficulty)
			maxD = math.Max(maxD, spec.Difficulty)
		}
		if len(specs) > 0 {
			node.ConceptsCount = len(specs)
			node.LevelFirstIntroduced = b.progression.LowestLevel(levels)
			node.DifficultyRange = domain.DifficultyRange{Min: minD, Max: maxD}
		}

		b.categoryNodes = append(b.categoryNodes, node)
		b.nodesByName[category] = node
	}

	b.logger.Debug("Generated sequenced concepts",
		zap.Int("concepts", len(b.concepts)),
		zap.Int("categories", len(b.categoryNodes)),
	)
	return nil
}

func (b *MasterCurriculumBuilder) newConcept(index int, category string, catOrder int, spec domain.ConceptSpec) *domain.CurriculumConcept {
	c := domain.NewCurriculumConcept(
		util.ConceptID(b.discipline, index),
		spec.Title,
		fmt.Sprintf("%s concept: %s", b.discipline, spec.Title),
		category,
		spec.Title,
		spec.Level,
		spec.Bloom,
	)
	c.SequenceOrder = spec.Sequence
	c.CategoryOrder = catOrder
	c.DifficultyScore = spec.Difficulty
	c.EstimatedHours = spec.Hours

	if len(spec.Standards) > 0 {
		c.Standards = append([]string(nil), spec.Standards...)
	} else {
		c.Standards = b.progression.StandardsForLevel(spec.Level)
	}
	if len(spec.Objectives) > 0 {
		c.LearningObjectives = append([]string(nil), spec.Objectives...)
	}
	if len(spec.Keywords) > 0 {
		c.Keywords = append([]string(nil), spec.Keywords...)
	} else {
		c.Keywords = titleKeywords(spec.Title)
	}
	if len(spec.SourceBooks) > 0 {
		c.SourceBooks = append([]string(nil), spec.SourceBooks...)
	}
	if len(spec.SourceChapters) > 0 {
		c.SourceChapters = append([]string(nil), spec.SourceChapters...)
	}
	return c
}

// titleKeywords returns the first five lower-cased words of title.
func titleKeywords(title string) []string {
	words := strings.Fields(strings.ToLower(title))
	if len(words) > 5 {
		words = words[:5]
	}
	return words
}

// buildCategoryGraph adds one node per category and an edge from every
// declared prerequisite to its dependent, then checks that the result is
// acyclic and consistent with the progression order.
func (b *MasterCurriculumBuilder) buildCategoryGraph() error {
	g := graph.NewDirected()
	for _, n := range b.categoryNodes {
		if existing, ok := g.Node(n.CategoryID); ok {
			return domain.NewInvalidTemplateError(b.discipline,
				fmt.Errorf("categories %q and %q share the identifier %q", existing.Name, n.Name, n.CategoryID))
		}
		g.AddNode(graph.Node{
			ID:            n.CategoryID,
			Name:          n.Name,
			ConceptsCount: n.ConceptsCount,
			Level:         n.LevelFirstIntroduced,
		})
	}
	for _, n := range b.categoryNodes {
		for _, prereq := range n.Prerequisites {
			p, ok := b.nodesByName[prereq]
			if !ok {
				return domain.NewInvalidTemplateError(b.discipline,
					fmt.Errorf("category %q requires unknown category %q", n.Name, prereq))
			}
			if err := g.AddEdge(p.CategoryID, n.CategoryID); err != nil {
				return domain.NewInternalError("failed to add prerequisite edge", err)
			}
		}
	}
	b.categoryGraph = g

	if cycle := g.FindCycle(); cycle != nil {
		return domain.NewTemplateCycleError(b.discipline, &graph.CycleError{Cycle: cycle})
	}

	for _, n := range b.categoryNodes {
		for _, prereq := range n.Prerequisites {
			if b.nodesByName[prereq].CategoryOrder >= n.CategoryOrder {
				return domain.NewProgressionOrderError(n.Name, prereq)
			}
		}
	}

	b.logger.Info("Built category graph",
		zap.Int("nodes", g.NumberOfNodes()),
		zap.Int("edges", g.NumberOfEdges()),
	)
	return nil
}

// linkConceptPrerequisites chains the concepts of each category in sequence
// and makes the first concept of a category depend on the last concept of
// each prerequisite category.
func (b *MasterCurriculumBuilder) linkConceptPrerequisites() error {
	first := map[string]*domain.CurriculumConcept{}
	last := map[string]*domain.CurriculumConcept{}
	var prev *domain.CurriculumConcept
	for _, c := range b.concepts {
		if prev != nil && prev.Category == c.Category {
			c.Prerequisites = append(c.Prerequisites, prev.ConceptID)
		}
		if _, ok := first[c.Category]; !ok {
			first[c.Category] = c
		}
		last[c.Category] = c
		prev = c
	}

	for _, n := range b.categoryNodes {
		head, ok := first[n.Name]
		if !ok {
			continue
		}
		for _, prereq := range n.Prerequisites {
			if tail, ok := last[prereq]; ok {
				head.Prerequisites = append(head.Prerequisites, tail.ConceptID)
			}
		}
	}
	return nil
}

func (b *MasterCurriculumBuilder) createCurriculumTable() domain.CurriculumTable {
	return domain.NewCurriculumTable(b.concepts)
}

func (b *MasterCurriculumBuilder) generateConnectivityGraph() error {
	if b.renderers.Graph == nil {
		return errors.New("no category graph renderer configured")
	}
	title := fmt.Sprintf("%s Curriculum - Category Prerequisites", b.discipline)
	if err := b.renderers.Graph.Render(b.categoryGraph, title, b.GraphPath()); err != nil {
		return err
	}
	b.logger.Info("Generated connectivity graph", zap.String("path", b.GraphPath()))
	return nil
}

// depthMatrix counts concepts per (category, level) in progression order.
func (b *MasterCurriculumBuilder) depthMatrix() *domain.DepthMatrix {
	levels := domain.AllLevels()
	col := make(map[domain.Level]int, len(levels))
	for j, l := range levels {
		col[l] = j
	}

	m := &domain.DepthMatrix{
		Categories:     make([]string, len(b.categoryNodes)),
		Levels:         levels,
		Counts:         make([][]int, len(b.categoryNodes)),
		MeanDifficulty: make([][]float64, len(b.categoryNodes)),
	}
	row := make(map[string]int, len(b.categoryNodes))
	for i, n := range b.categoryNodes {
		m.Categories[i] = n.Name
		m.Counts[i] = make([]int, len(levels))
		m.MeanDifficulty[i] = make([]float64, len(levels))
		row[n.Name] = i
	}
	for _, c := range b.concepts {
		i, j := row[c.Category], col[c.Level]
		m.Counts[i][j]++
		m.MeanDifficulty[i][j] += c.DifficultyScore
	}
	for i := range m.Counts {
		for j, n := range m.Counts[i] {
			if n > 0 {
				m.MeanDifficulty[i][j] /= float64(n)
			}
		}
	}
	return m
}

func (b *MasterCurriculumBuilder) generateDepthHeatmap(m *domain.DepthMatrix) error {
	if b.renderers.Heatmap == nil {
		return errors.New("no depth heat-map renderer configured")
	}
	title := fmt.Sprintf("%s Curriculum Depth Heat-Map", b.discipline)
	if err := b.renderers.Heatmap.Render(m, title, b.HeatmapPath()); err != nil {
		return err
	}
	b.logger.Info("Generated depth heat-map", zap.String("path", b.HeatmapPath()))
	return nil
}
