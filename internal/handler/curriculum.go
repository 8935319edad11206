package handler

import (
	"strings"

	"curricula/internal/domain"
	"curricula/internal/dto"
	"curricula/internal/logger"
	"curricula/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CurriculumHandler handles curriculum-related HTTP requests
type CurriculumHandler struct {
	service   domain.CurriculumService
	validator *middleware.ValidationMiddleware
}

// NewCurriculumHandler creates a new CurriculumHandler instance
func NewCurriculumHandler(service domain.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{
		service:   service,
		validator: middleware.NewValidationMiddleware(),
	}
}

// RegisterRoutes mounts the curriculum endpoints on router.
func (h *CurriculumHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/disciplines", h.ListDisciplines)

	curricula := router.Group("/curricula")
	curricula.Post("/build-all", h.BuildAll)

	byDiscipline := curricula.Group("/:discipline", h.validator.ValidateDiscipline())
	byDiscipline.Post("/build", h.Build)
	byDiscipline.Get("/", h.GetLatest)
	byDiscipline.Get("/concepts", h.GetConcepts)
	byDiscipline.Get("/builds", h.ListBuilds)
	byDiscipline.Get("/artifacts/:kind", h.validator.ValidateArtifactKind(), h.GetArtifact)
}

// ListDisciplines godoc
// @Summary List disciplines
// @Description Returns every discipline with a registered template
// @Tags curricula
// @Produce json
// @Success 200 {object} dto.DisciplinesResponse
// @Router /disciplines [get]
func (h *CurriculumHandler) ListDisciplines(c *fiber.Ctx) error {
	return c.JSON(dto.DisciplinesResponse{Disciplines: h.service.ListDisciplines()})
}

// Build godoc
// @Summary Build a master curriculum
// @Description Runs the full build for one discipline and stores the result
// @Tags curricula
// @Produce json
// @Param discipline path string true "Discipline"
// @Success 201 {object} dto.CurriculumSummaryResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Router /curricula/{discipline}/build [post]
func (h *CurriculumHandler) Build(c *fiber.Ctx) error {
	discipline := disciplineOf(c)

	mc, err := h.service.Build(c.UserContext(), discipline)
	if err != nil {
		return err
	}

	logger.Get().Info("Curriculum built",
		zap.String("discipline", mc.Discipline),
		zap.String("build_id", mc.BuildID),
		zap.Int("concepts", mc.TotalConcepts),
	)
	return c.Status(fiber.StatusCreated).JSON(dto.ToSummaryResponse(mc))
}

// BuildAll godoc
// @Summary Build every discipline
// @Tags curricula
// @Produce json
// @Success 201 {object} dto.BuildAllResponse
// @Router /curricula/build-all [post]
func (h *CurriculumHandler) BuildAll(c *fiber.Ctx) error {
	builds, err := h.service.BuildAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BuildAllResponse{Builds: dto.ToSummaryResponses(builds)})
}

// GetLatest godoc
// @Summary Latest build summary
// @Tags curricula
// @Produce json
// @Param discipline path string true "Discipline"
// @Success 200 {object} dto.CurriculumSummaryResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /curricula/{discipline} [get]
func (h *CurriculumHandler) GetLatest(c *fiber.Ctx) error {
	mc, err := h.service.GetLatest(c.UserContext(), disciplineOf(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToSummaryResponse(mc))
}

// GetConcepts godoc
// @Summary Concepts of the latest build
// @Description Optional category and level query parameters filter the list
// @Tags curricula
// @Produce json
// @Param discipline path string true "Discipline"
// @Param category query string false "Category name"
// @Param level query string false "Education level"
// @Success 200 {object} dto.ConceptListResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /curricula/{discipline}/concepts [get]
func (h *CurriculumHandler) GetConcepts(c *fiber.Ctx) error {
	discipline := disciplineOf(c)
	concepts, err := h.service.GetConcepts(c.UserContext(), discipline)
	if err != nil {
		return err
	}

	category := strings.TrimSpace(c.Query("category"))
	level := strings.TrimSpace(c.Query("level"))

	out := make([]dto.ConceptResponse, 0, len(concepts))
	for _, concept := range concepts {
		if category != "" && !strings.EqualFold(concept.Category, category) {
			continue
		}
		if level != "" && !strings.EqualFold(string(concept.Level), level) {
			continue
		}
		out = append(out, dto.ToConceptResponse(concept))
	}

	return c.JSON(dto.ConceptListResponse{
		Discipline: discipline,
		Count:      len(out),
		Concepts:   out,
	})
}

// ListBuilds godoc
// @Summary Stored builds of a discipline
// @Tags curricula
// @Produce json
// @Param discipline path string true "Discipline"
// @Success 200 {object} dto.BuildListResponse
// @Router /curricula/{discipline}/builds [get]
func (h *CurriculumHandler) ListBuilds(c *fiber.Ctx) error {
	discipline := disciplineOf(c)
	builds, err := h.service.ListBuilds(c.UserContext(), discipline)
	if err != nil {
		return err
	}
	return c.JSON(dto.BuildListResponse{
		Discipline: discipline,
		Builds:     dto.ToSummaryResponses(builds),
	})
}

// GetArtifact godoc
// @Summary Download a build artifact
// @Description kind is one of table, graph, heatmap or json
// @Tags curricula
// @Param discipline path string true "Discipline"
// @Param kind path string true "Artifact kind"
// @Success 200 {file} file
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /curricula/{discipline}/artifacts/{kind} [get]
func (h *CurriculumHandler) GetArtifact(c *fiber.Ctx) error {
	kind, _ := c.Locals(middleware.LocalArtifactKind).(domain.ArtifactKind)

	path, err := h.service.ArtifactPath(c.UserContext(), disciplineOf(c), kind)
	if err != nil {
		return err
	}
	return c.SendFile(path)
}

func disciplineOf(c *fiber.Ctx) string {
	if d, ok := c.Locals(middleware.LocalDiscipline).(string); ok {
		return d
	}
	return c.Params("discipline")
}
