package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"curricula/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCurriculumTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var generatedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleBuild() *domain.MasterCurriculum {
	first := domain.NewCurriculumConcept("physics_0001", "Scalar and Vector Quantities",
		"Physics concept: Scalar and Vector Quantities", "Mathematical Foundations",
		"Scalar and Vector Quantities", domain.LevelHSFound, domain.BloomUnderstand)
	first.Standards = []string{"NGSS 9-12", "State Standards"}
	first.SequenceOrder = 1
	first.CreatedAt = generatedAt

	second := domain.NewCurriculumConcept("physics_0002", "Vector Addition and Subtraction",
		"Physics concept: Vector Addition and Subtraction", "Mathematical Foundations",
		"Vector Addition and Subtraction", domain.LevelHSFound, domain.BloomApply)
	second.Prerequisites = []string{"physics_0001"}
	second.SequenceOrder = 2
	second.CreatedAt = generatedAt

	return &domain.MasterCurriculum{
		Discipline:          "Physics",
		TotalConcepts:       2,
		Categories:          1,
		CurriculumTablePath: "out/Physics_curriculum_table.csv",
		GraphPath:           "out/Physics_category_graph.png",
		HeatmapPath:         "out/Physics_depth_heatmap.png",
		SnapshotPath:        "out/Physics_master_curriculum.json",
		GenerationTimestamp: generatedAt,
		Concepts:            []*domain.CurriculumConcept{first, second},
	}
}

func TestCurriculumDatabaseAdapter_SaveBuild(t *testing.T) {
	db, mock := setupCurriculumTestDB(t)
	repo := NewCurriculumDatabaseAdapter(db)
	build := sampleBuild()

	mock.ExpectExec(`INSERT INTO curriculum_builds`).
		WithArgs(sqlmock.AnyArg(), "Physics", 2, 1, build.GraphPath, build.HeatmapPath,
			build.CurriculumTablePath, build.SnapshotPath, generatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO curriculum_concepts`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO curriculum_concepts`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveBuild(context.Background(), build))
	assert.Len(t, build.BuildID, 26)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumDatabaseAdapter_SaveBuild_KeepsID(t *testing.T) {
	db, mock := setupCurriculumTestDB(t)
	repo := NewCurriculumDatabaseAdapter(db)
	build := sampleBuild()
	build.BuildID = "01HZY6Q3J7F6W3M0Q9C8V1T2AB"
	build.Concepts = nil

	mock.ExpectExec(`INSERT INTO curriculum_builds`).
		WithArgs(build.BuildID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveBuild(context.Background(), build))
	assert.Equal(t, "01HZY6Q3J7F6W3M0Q9C8V1T2AB", build.BuildID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumDatabaseAdapter_SaveBuild_ConceptError(t *testing.T) {
	db, mock := setupCurriculumTestDB(t)
	repo := NewCurriculumDatabaseAdapter(db)
	dbErr := errors.New("constraint failed")

	mock.ExpectExec(`INSERT INTO curriculum_builds`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO curriculum_concepts`).WillReturnError(dbErr)

	err := repo.SaveBuild(context.Background(), sampleBuild())
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "physics_0001")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func buildRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "discipline", "total_concepts", "categories", "graph_path",
		"heatmap_path", "table_path", "snapshot_path", "generated_at"})
}

func TestCurriculumDatabaseAdapter_GetLatestBuild(t *testing.T) {
	db, mock := setupCurriculumTestDB(t)
	repo := NewCurriculumDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT .+ FROM curriculum_builds\s+WHERE discipline = \? AND generated_at = \(SELECT MAX\(generated_at\)`).
		WithArgs("Physics", "Physics").
		WillReturnRows(buildRows().AddRow("01B", "Physics", 135, 22, "g.png", "h.png", "t.csv", "s.json", generatedAt))

	got, err := repo.GetLatestBuild(context.Background(), "Physics")
	require.NoError(t, err)
	assert.Equal(t, "01B", got.BuildID)
	assert.Equal(t, 135, got.TotalConcepts)
	assert.Equal(t, 22, got.Categories)
	assert.Equal(t, "t.csv", got.CurriculumTablePath)
	assert.Equal(t, generatedAt, got.GenerationTimestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumDatabaseAdapter_GetLatestBuild_NotFound(t *testing.T) {
	db, mock := setupCurriculumTestDB(t)
	repo := NewCurriculumDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT .+ FROM curriculum_builds`).
		WithArgs("Chemistry", "Chemistry").
		WillReturnRows(buildRows())

	got, err := repo.GetLatestBuild(context.Background(), "Chemistry")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrBuildNotFound)

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeBuildNotFound, de.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumDatabaseAdapter_GetConcepts(t *testing.T) {
	db, mock := setupCurriculumTestDB(t)
	repo := NewCurriculumDatabaseAdapter(db)

	cols := []string{"build_id", "concept_id", "title", "description", "category", "subtopic", "edu_level",
		"bloom", "standards", "prerequisites", "objectives", "difficulty", "hours", "source_books",
		"source_chapters", "keywords", "sequence_order", "category_order", "created_at"}
	rows := sqlmock.NewRows(cols).
		AddRow("01B", "physics_0001", "Scalar and Vector Quantities", "d", "Mathematical Foundations",
			"Scalar and Vector Quantities", "HS-Found", "Understand", `["NGSS 9-12","State Standards"]`, `[]`,
			nil, 1.5, 2.0, "", "null", `["scalar","and","vector","quantities"]`, 1, 0, generatedAt).
		AddRow("01B", "physics_0002", "Vector Addition", "d", "Mathematical Foundations",
			"Vector Addition", "HS-Found", "Apply", `["NGSS 9-12"]`, `["physics_0001"]`,
			`[]`, 2.0, 2.0, `[]`, `[]`, `["vector","addition"]`, 2, 0, generatedAt)

	mock.ExpectQuery(`SELECT .+ FROM curriculum_concepts\s+WHERE build_id = \? ORDER BY category_order, sequence_order`).
		WithArgs("01B").
		WillReturnRows(rows)

	got, err := repo.GetConcepts(context.Background(), "01B")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.LevelHSFound, got[0].Level)
	assert.Equal(t, domain.BloomUnderstand, got[0].BloomTaxonomy)
	assert.Equal(t, []string{"NGSS 9-12", "State Standards"}, got[0].Standards)
	assert.Equal(t, []string{}, got[0].LearningObjectives)
	assert.Equal(t, []string{}, got[0].SourceBooks)
	assert.Equal(t, []string{}, got[0].SourceChapters)
	assert.Equal(t, 1.5, got[0].DifficultyScore)
	assert.Equal(t, []string{"physics_0001"}, got[1].Prerequisites)
	assert.Equal(t, 2, got[1].SequenceOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumDatabaseAdapter_ListBuilds(t *testing.T) {
	db, mock := setupCurriculumTestDB(t)
	repo := NewCurriculumDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT .+ FROM curriculum_builds\s+WHERE discipline = \? ORDER BY generated_at DESC, id DESC`).
		WithArgs("Physics").
		WillReturnRows(buildRows().
			AddRow("02B", "Physics", 135, 22, "g", "h", "t", "s", generatedAt.Add(time.Hour)).
			AddRow("01B", "Physics", 130, 22, "g", "h", "t", "s", generatedAt))

	got, err := repo.ListBuilds(context.Background(), "Physics")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "02B", got[0].BuildID)
	assert.Equal(t, "01B", got[1].BuildID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManagerAdapter(t *testing.T) {
	t.Run("commit uses the transaction", func(t *testing.T) {
		db, mock := setupCurriculumTestDB(t)
		repo := NewCurriculumDatabaseAdapter(db)
		tm := NewTransactionManagerAdapter(db)
		build := sampleBuild()
		build.Concepts = nil

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO curriculum_builds`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
			_, isTx := GetExecutor(ctx, db).(*sqlx.Tx)
			assert.True(t, isTx)
			return repo.SaveBuild(ctx, build)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock := setupCurriculumTestDB(t)
		tm := NewTransactionManagerAdapter(db)
		fnErr := errors.New("render failed")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tm.WithTransaction(context.Background(), func(ctx context.Context) error { return fnErr })
		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on panic", func(t *testing.T) {
		db, mock := setupCurriculumTestDB(t)
		tm := NewTransactionManagerAdapter(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = tm.WithTransaction(context.Background(), func(ctx context.Context) error { panic("boom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("executor outside transaction", func(t *testing.T) {
		db, _ := setupCurriculumTestDB(t)
		assert.Same(t, db, GetExecutor(context.Background(), db))
	})
}
