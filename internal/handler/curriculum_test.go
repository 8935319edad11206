package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"curricula/internal/domain"
	"curricula/internal/dto"
	"curricula/internal/handler"
	"curricula/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

type MockCurriculumService struct {
	ListDisciplinesFunc func() []string
	BuildFunc           func(ctx context.Context, discipline string) (*domain.MasterCurriculum, error)
	BuildAllFunc        func(ctx context.Context) ([]*domain.MasterCurriculum, error)
	GetLatestFunc       func(ctx context.Context, discipline string) (*domain.MasterCurriculum, error)
	GetConceptsFunc     func(ctx context.Context, discipline string) ([]*domain.CurriculumConcept, error)
	ListBuildsFunc      func(ctx context.Context, discipline string) ([]*domain.MasterCurriculum, error)
	ArtifactPathFunc    func(ctx context.Context, discipline string, kind domain.ArtifactKind) (string, error)
}

func (m *MockCurriculumService) ListDisciplines() []string {
	if m.ListDisciplinesFunc != nil {
		return m.ListDisciplinesFunc()
	}
	panic("MockCurriculumService.ListDisciplinesFunc not implemented")
}
func (m *MockCurriculumService) Build(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, discipline)
	}
	panic("MockCurriculumService.BuildFunc not implemented")
}
func (m *MockCurriculumService) BuildAll(ctx context.Context) ([]*domain.MasterCurriculum, error) {
	if m.BuildAllFunc != nil {
		return m.BuildAllFunc(ctx)
	}
	panic("MockCurriculumService.BuildAllFunc not implemented")
}
func (m *MockCurriculumService) GetLatest(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, discipline)
	}
	panic("MockCurriculumService.GetLatestFunc not implemented")
}
func (m *MockCurriculumService) GetConcepts(ctx context.Context, discipline string) ([]*domain.CurriculumConcept, error) {
	if m.GetConceptsFunc != nil {
		return m.GetConceptsFunc(ctx, discipline)
	}
	panic("MockCurriculumService.GetConceptsFunc not implemented")
}
func (m *MockCurriculumService) ListBuilds(ctx context.Context, discipline string) ([]*domain.MasterCurriculum, error) {
	if m.ListBuildsFunc != nil {
		return m.ListBuildsFunc(ctx, discipline)
	}
	panic("MockCurriculumService.ListBuildsFunc not implemented")
}
func (m *MockCurriculumService) ArtifactPath(ctx context.Context, discipline string, kind domain.ArtifactKind) (string, error) {
	if m.ArtifactPathFunc != nil {
		return m.ArtifactPathFunc(ctx, discipline, kind)
	}
	panic("MockCurriculumService.ArtifactPathFunc not implemented")
}

var builtAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func physicsSummary() *domain.MasterCurriculum {
	return &domain.MasterCurriculum{
		BuildID:             "01HZY6Q3J7F6W3M0Q9C8V1T2AB",
		Discipline:          "Physics",
		TotalConcepts:       135,
		Categories:          22,
		CurriculumTablePath: "out/Physics_curriculum_table.csv",
		GraphPath:           "out/Physics_category_graph.png",
		HeatmapPath:         "out/Physics_depth_heatmap.png",
		SnapshotPath:        "out/Physics_master_curriculum.json",
		GenerationTimestamp: builtAt,
	}
}

func newTestApp(svc domain.CurriculumService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	handler.NewCurriculumHandler(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func decode(t *testing.T, body io.Reader, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(dest))
}

func TestCurriculumHandler_ListDisciplines(t *testing.T) {
	svc := &MockCurriculumService{
		ListDisciplinesFunc: func() []string { return []string{"Chemistry", "Physics"} },
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/disciplines", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.DisciplinesResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, []string{"Chemistry", "Physics"}, body.Disciplines)
}

func TestCurriculumHandler_Build(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		buildErr   error
		wantStatus int
		wantCode   string
		wantCalled bool
	}{
		{
			name:       "success",
			path:       "/api/curricula/physics/build",
			wantStatus: fiber.StatusCreated,
			wantCalled: true,
		},
		{
			name:       "escaped discipline",
			path:       "/api/curricula/Earth%20Science/build",
			buildErr:   domain.NewTemplateNotImplementedError("Earth Science"),
			wantStatus: fiber.StatusNotFound,
			wantCode:   string(domain.CodeTemplateNotImplemented),
			wantCalled: true,
		},
		{
			name:       "template cycle",
			path:       "/api/curricula/physics/build",
			buildErr:   domain.NewTemplateCycleError("Physics", nil),
			wantStatus: fiber.StatusUnprocessableEntity,
			wantCode:   string(domain.CodeTemplateCycle),
			wantCalled: true,
		},
		{
			name:       "progression order",
			path:       "/api/curricula/physics/build",
			buildErr:   domain.NewProgressionOrderError("Mechanics", "Modern Physics"),
			wantStatus: fiber.StatusUnprocessableEntity,
			wantCode:   string(domain.CodeProgressionOrder),
			wantCalled: true,
		},
		{
			name:       "storage failure",
			path:       "/api/curricula/physics/build",
			buildErr:   domain.NewInternalError("failed to store curriculum build", assert.AnError),
			wantStatus: fiber.StatusInternalServerError,
			wantCode:   string(domain.CodeInternal),
			wantCalled: true,
		},
		{
			name:       "invalid discipline",
			path:       "/api/curricula/9lives!/build",
			wantStatus: fiber.StatusBadRequest,
			wantCode:   string(domain.CodeValidation),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &MockCurriculumService{
				BuildFunc: func(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
					called = true
					if tt.buildErr != nil {
						return nil, tt.buildErr
					}
					assert.Equal(t, "physics", discipline)
					return physicsSummary(), nil
				},
			}
			app := newTestApp(svc)

			resp, err := app.Test(httptest.NewRequest("POST", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalled, called)

			if tt.wantCode != "" {
				var body map[string]interface{}
				decode(t, resp.Body, &body)
				assert.Equal(t, tt.wantCode, body["code"])
				return
			}
			var body dto.CurriculumSummaryResponse
			decode(t, resp.Body, &body)
			assert.Equal(t, "Physics", body.Discipline)
			assert.Equal(t, 135, body.TotalConcepts)
			assert.Equal(t, 22, body.Categories)
			assert.Equal(t, "out/Physics_curriculum_table.csv", body.CurriculumTable)
			assert.True(t, builtAt.Equal(body.GenerationTimestamp))
		})
	}
}

func TestCurriculumHandler_BuildAll(t *testing.T) {
	chemistry := physicsSummary()
	chemistry.Discipline = "Chemistry"
	svc := &MockCurriculumService{
		BuildAllFunc: func(ctx context.Context) ([]*domain.MasterCurriculum, error) {
			return []*domain.MasterCurriculum{chemistry, physicsSummary()}, nil
		},
	}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/curricula/build-all", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body dto.BuildAllResponse
	decode(t, resp.Body, &body)
	require.Len(t, body.Builds, 2)
	assert.Equal(t, "Chemistry", body.Builds[0].Discipline)
	assert.Equal(t, "Physics", body.Builds[1].Discipline)
}

func TestCurriculumHandler_GetLatest(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &MockCurriculumService{
			GetLatestFunc: func(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
				assert.Equal(t, "Physics", discipline)
				return physicsSummary(), nil
			},
		}
		resp, err := newTestApp(svc).Test(httptest.NewRequest("GET", "/api/curricula/Physics", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.CurriculumSummaryResponse
		decode(t, resp.Body, &body)
		assert.Equal(t, "01HZY6Q3J7F6W3M0Q9C8V1T2AB", body.BuildID)
	})

	t.Run("never built", func(t *testing.T) {
		svc := &MockCurriculumService{
			GetLatestFunc: func(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
				return nil, domain.NewBuildNotFoundError(discipline)
			},
		}
		resp, err := newTestApp(svc).Test(httptest.NewRequest("GET", "/api/curricula/Chemistry", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var body middleware.ErrorResponse
		decode(t, resp.Body, &body)
		assert.Equal(t, string(domain.CodeBuildNotFound), body.Code)
		assert.Equal(t, fiber.StatusNotFound, body.Status)
	})
}

func TestCurriculumHandler_GetConcepts(t *testing.T) {
	first := domain.NewCurriculumConcept("physics_0001", "Scalar and Vector Quantities", "d",
		"Mathematical Foundations", "Scalar and Vector Quantities", domain.LevelHSFound, domain.BloomUnderstand)
	second := domain.NewCurriculumConcept("physics_0040", "Newton's First Law", "d",
		"Classical Mechanics", "Newton's First Law", domain.LevelHSAdv, domain.BloomApply)
	second.Prerequisites = []string{"physics_0001"}

	svc := &MockCurriculumService{
		GetConceptsFunc: func(ctx context.Context, discipline string) ([]*domain.CurriculumConcept, error) {
			return []*domain.CurriculumConcept{first, second}, nil
		},
	}
	app := newTestApp(svc)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "all", query: "", wantIDs: []string{"physics_0001", "physics_0040"}},
		{name: "by category", query: "?category=classical%20mechanics", wantIDs: []string{"physics_0040"}},
		{name: "by level", query: "?level=HS-Found", wantIDs: []string{"physics_0001"}},
		{name: "no match", query: "?category=Optics", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/api/curricula/Physics/concepts"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			var body dto.ConceptListResponse
			decode(t, resp.Body, &body)
			assert.Equal(t, len(tt.wantIDs), body.Count)
			ids := make([]string, 0, len(body.Concepts))
			for _, c := range body.Concepts {
				ids = append(ids, c.ConceptID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCurriculumHandler_ListBuilds(t *testing.T) {
	older := physicsSummary()
	older.BuildID = "01HZY6Q3J7F6W3M0Q9C8V1T2AA"
	svc := &MockCurriculumService{
		ListBuildsFunc: func(ctx context.Context, discipline string) ([]*domain.MasterCurriculum, error) {
			return []*domain.MasterCurriculum{physicsSummary(), older}, nil
		},
	}

	resp, err := newTestApp(svc).Test(httptest.NewRequest("GET", "/api/curricula/Physics/builds", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.BuildListResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, "Physics", body.Discipline)
	require.Len(t, body.Builds, 2)
	assert.Equal(t, older.BuildID, body.Builds[1].BuildID)
}

func TestCurriculumHandler_GetArtifact(t *testing.T) {
	table := filepath.Join(t.TempDir(), "Physics_curriculum_table.csv")
	require.NoError(t, os.WriteFile(table, []byte("Concept_ID,Title\n"), 0o644))

	t.Run("serves the file", func(t *testing.T) {
		svc := &MockCurriculumService{
			ArtifactPathFunc: func(ctx context.Context, discipline string, kind domain.ArtifactKind) (string, error) {
				assert.Equal(t, domain.ArtifactTable, kind)
				return table, nil
			},
		}
		resp, err := newTestApp(svc).Test(httptest.NewRequest("GET", "/api/curricula/Physics/artifacts/table", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "Concept_ID,Title\n", string(data))
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc := &MockCurriculumService{}
		resp, err := newTestApp(svc).Test(httptest.NewRequest("GET", "/api/curricula/Physics/artifacts/pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body middleware.ValidationErrorResponse
		decode(t, resp.Body, &body)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "kind", body.Errors[0].Field)
	})

	t.Run("missing file", func(t *testing.T) {
		svc := &MockCurriculumService{
			ArtifactPathFunc: func(ctx context.Context, discipline string, kind domain.ArtifactKind) (string, error) {
				return "", domain.NewNotFoundError("graph artifact of Physics is missing").WithContext("path", "gone.png")
			},
		}
		resp, err := newTestApp(svc).Test(httptest.NewRequest("GET", "/api/curricula/Physics/artifacts/graph", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var body middleware.ErrorResponse
		decode(t, resp.Body, &body)
		assert.Equal(t, "gone.png", body.Details["path"])
	})
}
