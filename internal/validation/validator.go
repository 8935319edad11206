package validation

import (
	"regexp"
	"strings"

	"curricula/internal/domain"
)

var (
	disciplinePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 _&-]*$`)
	ulidPattern       = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
)

const maxDisciplineLength = 64

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDiscipline checks the shape of a discipline path parameter. Whether
// a template exists for it is decided by the registry, not here.
func (v *Validator) ValidateDiscipline(discipline string) domain.ValidationErrors {
	var errs domain.ValidationErrors

	trimmed := strings.TrimSpace(discipline)
	switch {
	case trimmed == "":
		errs = append(errs, domain.NewMissingFieldError("discipline"))
	case len(trimmed) > maxDisciplineLength:
		errs = append(errs, domain.NewOutOfRangeError("discipline", len(trimmed), 1, maxDisciplineLength))
	case !disciplinePattern.MatchString(trimmed):
		errs = append(errs, domain.NewInvalidFormatError("discipline", discipline))
	}

	return errs
}

// ValidateArtifactKind checks that kind names one of the build artifacts.
func (v *Validator) ValidateArtifactKind(kind string) domain.ValidationErrors {
	if strings.TrimSpace(kind) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("kind")}
	}
	for _, k := range domain.AllArtifactKinds() {
		if string(k) == kind {
			return nil
		}
	}
	return domain.ValidationErrors{domain.NewInvalidFormatError("kind", kind)}
}

// ValidateBuildID accepts an empty ID (meaning the latest build) or a ULID.
func (v *Validator) ValidateBuildID(id string) domain.ValidationErrors {
	if id == "" || ulidPattern.MatchString(id) {
		return nil
	}
	return domain.ValidationErrors{domain.NewInvalidFormatError("build_id", id)}
}
