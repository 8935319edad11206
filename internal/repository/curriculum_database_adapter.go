package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"curricula/internal/domain"
	"curricula/internal/repository/models"
	"curricula/internal/util"

	"github.com/jmoiron/sqlx"
)

const buildColumns = `id, discipline, total_concepts, categories, graph_path, heatmap_path, table_path, snapshot_path, generated_at`

const conceptColumns = `build_id, concept_id, title, description, category, subtopic, edu_level, bloom,
	standards, prerequisites, objectives, difficulty, hours, source_books, source_chapters, keywords,
	sequence_order, category_order, created_at`

// CurriculumDatabaseAdapter stores builds and their concepts with sqlx.
type CurriculumDatabaseAdapter struct {
	db DBTX
}

// NewCurriculumDatabaseAdapter creates a new instance of CurriculumDatabaseAdapter
func NewCurriculumDatabaseAdapter(db *sqlx.DB) domain.CurriculumRepository {
	return &CurriculumDatabaseAdapter{db: db}
}

// SaveBuild inserts the summary row and one row per concept. When build has
// no BuildID a new ULID is assigned to it. Run it inside WithTransaction to
// make the write atomic.
func (r *CurriculumDatabaseAdapter) SaveBuild(ctx context.Context, build *domain.MasterCurriculum) error {
	exec := GetExecutor(ctx, r.db)

	if build.BuildID == "" {
		build.BuildID = util.NewULID()
	}
	row := toModelBuild(build)
	query := `INSERT INTO curriculum_builds (` + buildColumns + `)
		VALUES (:id, :discipline, :total_concepts, :categories, :graph_path, :heatmap_path, :table_path, :snapshot_path, :generated_at)`
	if _, err := exec.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert curriculum build %s: %w", build.BuildID, err)
	}

	conceptQuery := `INSERT INTO curriculum_concepts (` + conceptColumns + `)
		VALUES (:build_id, :concept_id, :title, :description, :category, :subtopic, :edu_level, :bloom,
		:standards, :prerequisites, :objectives, :difficulty, :hours, :source_books, :source_chapters, :keywords,
		:sequence_order, :category_order, :created_at)`
	for _, c := range build.Concepts {
		if _, err := exec.NamedExecContext(ctx, conceptQuery, toModelConcept(build.BuildID, c)); err != nil {
			return fmt.Errorf("insert concept %s: %w", c.ConceptID, err)
		}
	}
	return nil
}

// GetLatestBuild returns the summary of the newest build. Concepts are not
// loaded; use GetConcepts with the returned BuildID.
func (r *CurriculumDatabaseAdapter) GetLatestBuild(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
	exec := GetExecutor(ctx, r.db)

	var row models.CurriculumBuild
	query := exec.Rebind(`SELECT ` + buildColumns + ` FROM curriculum_builds
		WHERE discipline = ? AND generated_at = (SELECT MAX(generated_at) FROM curriculum_builds WHERE discipline = ?)
		ORDER BY id DESC`)
	if err := exec.GetContext(ctx, &row, query, discipline, discipline); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewBuildNotFoundError(discipline)
		}
		return nil, fmt.Errorf("get latest build for %s: %w", discipline, err)
	}
	return toDomainBuild(&row), nil
}

// GetConcepts returns the concepts of buildID in curriculum order.
func (r *CurriculumDatabaseAdapter) GetConcepts(ctx context.Context, buildID string) ([]*domain.CurriculumConcept, error) {
	exec := GetExecutor(ctx, r.db)

	var rows []models.CurriculumConcept
	query := exec.Rebind(`SELECT ` + conceptColumns + ` FROM curriculum_concepts
		WHERE build_id = ? ORDER BY category_order, sequence_order`)
	if err := exec.SelectContext(ctx, &rows, query, buildID); err != nil {
		return nil, fmt.Errorf("get concepts for build %s: %w", buildID, err)
	}

	concepts := make([]*domain.CurriculumConcept, len(rows))
	for i := range rows {
		concepts[i] = toDomainConcept(&rows[i])
	}
	return concepts, nil
}

// ListBuilds returns every stored build of discipline, newest first.
func (r *CurriculumDatabaseAdapter) ListBuilds(ctx context.Context, discipline string) ([]*domain.MasterCurriculum, error) {
	exec := GetExecutor(ctx, r.db)

	var rows []models.CurriculumBuild
	query := exec.Rebind(`SELECT ` + buildColumns + ` FROM curriculum_builds
		WHERE discipline = ? ORDER BY generated_at DESC, id DESC`)
	if err := exec.SelectContext(ctx, &rows, query, discipline); err != nil {
		return nil, fmt.Errorf("list builds for %s: %w", discipline, err)
	}

	builds := make([]*domain.MasterCurriculum, len(rows))
	for i := range rows {
		builds[i] = toDomainBuild(&rows[i])
	}
	return builds, nil
}

func toModelBuild(b *domain.MasterCurriculum) *models.CurriculumBuild {
	return &models.CurriculumBuild{
		ID:            b.BuildID,
		Discipline:    b.Discipline,
		TotalConcepts: b.TotalConcepts,
		Categories:    b.Categories,
		GraphPath:     b.GraphPath,
		HeatmapPath:   b.HeatmapPath,
		TablePath:     b.CurriculumTablePath,
		SnapshotPath:  b.SnapshotPath,
		GeneratedAt:   b.GenerationTimestamp.UTC(),
	}
}

func toDomainBuild(m *models.CurriculumBuild) *domain.MasterCurriculum {
	return &domain.MasterCurriculum{
		BuildID:             m.ID,
		Discipline:          m.Discipline,
		TotalConcepts:       m.TotalConcepts,
		Categories:          m.Categories,
		CurriculumTablePath: m.TablePath,
		GraphPath:           m.GraphPath,
		HeatmapPath:         m.HeatmapPath,
		SnapshotPath:        m.SnapshotPath,
		GenerationTimestamp: m.GeneratedAt,
	}
}

func toModelConcept(buildID string, c *domain.CurriculumConcept) *models.CurriculumConcept {
	return &models.CurriculumConcept{
		BuildID:        buildID,
		ConceptID:      c.ConceptID,
		Title:          c.Title,
		Description:    c.Description,
		Category:       c.Category,
		Subtopic:       c.Subtopic,
		Level:          string(c.Level),
		Bloom:          string(c.BloomTaxonomy),
		Standards:      models.StringSlice(c.Standards),
		Prerequisites:  models.StringSlice(c.Prerequisites),
		Objectives:     models.StringSlice(c.LearningObjectives),
		Difficulty:     c.DifficultyScore,
		Hours:          c.EstimatedHours,
		SourceBooks:    models.StringSlice(c.SourceBooks),
		SourceChapters: models.StringSlice(c.SourceChapters),
		Keywords:       models.StringSlice(c.Keywords),
		SequenceOrder:  c.SequenceOrder,
		CategoryOrder:  c.CategoryOrder,
		CreatedAt:      c.CreatedAt.UTC(),
	}
}

func toDomainConcept(m *models.CurriculumConcept) *domain.CurriculumConcept {
	c := domain.NewCurriculumConcept(m.ConceptID, m.Title, m.Description, m.Category, m.Subtopic,
		domain.Level(m.Level), domain.BloomLevel(m.Bloom))
	c.Standards = nonNil(m.Standards)
	c.Prerequisites = nonNil(m.Prerequisites)
	c.LearningObjectives = nonNil(m.Objectives)
	c.DifficultyScore = m.Difficulty
	c.EstimatedHours = m.Hours
	c.SourceBooks = nonNil(m.SourceBooks)
	c.SourceChapters = nonNil(m.SourceChapters)
	c.Keywords = nonNil(m.Keywords)
	c.SequenceOrder = m.SequenceOrder
	c.CategoryOrder = m.CategoryOrder
	c.CreatedAt = m.CreatedAt
	return c
}

func nonNil(s models.StringSlice) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}
