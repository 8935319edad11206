package template

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// File is the on-disk shape of a discipline template.
type File struct {
	Discipline  string         `yaml:"discipline" validate:"required"`
	Description string         `yaml:"description"`
	Categories  []CategoryFile `yaml:"categories" validate:"required,min=1,dive"`
}

// CategoryFile is one category entry. Categories appear in teaching order.
type CategoryFile struct {
	Name          string        `yaml:"name" validate:"required"`
	Description   string        `yaml:"description"`
	Prerequisites []string      `yaml:"prerequisites" validate:"dive,required"`
	Concepts      []ConceptFile `yaml:"concepts" validate:"dive"`
}

// ConceptFile is one authored concept.
type ConceptFile struct {
	Title          string   `yaml:"title" validate:"required"`
	Level          string   `yaml:"level" validate:"required,oneof=HS-Found HS-Adv UG-Intro UG-Adv Grad-Intro Grad-Adv"`
	Bloom          string   `yaml:"bloom" validate:"required,oneof=Remember Understand Apply Analyze Evaluate Create"`
	Sequence       int      `yaml:"sequence" validate:"gte=1"`
	Difficulty     float64  `yaml:"difficulty" validate:"gte=0,lte=10"`
	Hours          float64  `yaml:"hours" validate:"gt=0"`
	Standards      []string `yaml:"standards"`
	Objectives     []string `yaml:"objectives"`
	Keywords       []string `yaml:"keywords"`
	SourceBooks    []string `yaml:"source_books"`
	SourceChapters []string `yaml:"source_chapters"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report YAML key paths (categories[2].concepts[0].hours) instead of Go
	// field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
