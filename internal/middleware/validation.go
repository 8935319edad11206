package middleware

import (
	"net/url"
	"strings"

	"curricula/internal/domain"
	"curricula/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalDiscipline   = "validated_discipline"
	LocalArtifactKind = "validated_artifact_kind"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateDiscipline checks the :discipline path parameter.
func (vm *ValidationMiddleware) ValidateDiscipline() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Params("discipline")
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
		// fiber reuses the param buffer after the handler returns
		discipline := strings.Clone(strings.TrimSpace(raw))
		if errs := vm.validator.ValidateDiscipline(discipline); len(errs) > 0 {
			return errs
		}
		c.Locals(LocalDiscipline, discipline)
		return c.Next()
	}
}

// ValidateArtifactKind checks the :kind path parameter.
func (vm *ValidationMiddleware) ValidateArtifactKind() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := strings.Clone(c.Params("kind"))
		if errs := vm.validator.ValidateArtifactKind(kind); len(errs) > 0 {
			return errs
		}
		c.Locals(LocalArtifactKind, domain.ArtifactKind(kind))
		return c.Next()
	}
}
