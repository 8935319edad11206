package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"curricula/internal/domain"
	"curricula/internal/util"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = newValidator()

// Parse decodes and validates a YAML template. Any finding is returned as an
// INVALID_TEMPLATE domain error wrapping domain.ValidationErrors.
func Parse(data []byte) (*domain.DisciplineTemplate, error) {
	file, err := decode(data)
	if err != nil {
		return nil, domain.NewInvalidTemplateError("", err)
	}

	if errs := Validate(file); len(errs) > 0 {
		return nil, domain.NewInvalidTemplateError(file.Discipline, errs)
	}
	return toDomain(file), nil
}

func decode(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("template is empty")
		}
		return nil, fmt.Errorf("decode template: %w", err)
	}
	var extra interface{}
	if err := dec.Decode(&extra); err == nil {
		return nil, fmt.Errorf("multiple YAML documents are not supported")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	return &file, nil
}

// Validate runs the struct-tag checks and then the cross-field checks that
// tags cannot express. It returns every finding, not just the first.
func Validate(file *File) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if err := validate.Struct(file); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return domain.ValidationErrors{domain.NewFieldError("", err.Error(), nil)}
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fromFieldError(fe))
		}
	}

	known := make(map[string]bool, len(file.Categories))
	// Category IDs are slugs of the names, so distinct names must not share one.
	bySlug := make(map[string]string, len(file.Categories))
	for i, c := range file.Categories {
		field := fmt.Sprintf("categories[%d].name", i)
		if c.Name == "" {
			continue
		}
		if known[c.Name] {
			errs = append(errs, domain.NewFieldError(field, "duplicate category", c.Name))
			continue
		}
		known[c.Name] = true

		slug := util.Slugify(c.Name)
		switch other, taken := bySlug[slug]; {
		case slug == "":
			errs = append(errs, domain.NewFieldError(field, "must contain a letter or digit", c.Name))
		case taken:
			errs = append(errs, domain.NewFieldError(field,
				fmt.Sprintf("has the same identifier %q as category %q", slug, other), c.Name))
		default:
			bySlug[slug] = c.Name
		}
	}

	for i, c := range file.Categories {
		for j, p := range c.Prerequisites {
			field := fmt.Sprintf("categories[%d].prerequisites[%d]", i, j)
			switch {
			case p == c.Name:
				errs = append(errs, domain.NewFieldError(field, "category cannot require itself", p))
			case p != "" && !known[p]:
				errs = append(errs, domain.NewFieldError(field, "unknown category", p))
			}
		}
		errs = append(errs, validateSequences(i, c.Concepts)...)
		errs = append(errs, validateStandards(i, c.Concepts)...)
	}
	return errs
}

// validateStandards rejects standards that cannot round-trip through the
// curriculum table cell.
func validateStandards(categoryIdx int, concepts []ConceptFile) domain.ValidationErrors {
	var errs domain.ValidationErrors
	for j, c := range concepts {
		for k, s := range c.Standards {
			field := fmt.Sprintf("categories[%d].concepts[%d].standards[%d]", categoryIdx, j, k)
			switch {
			case strings.TrimSpace(s) == "":
				errs = append(errs, domain.NewMissingFieldError(field))
			case strings.Contains(s, domain.StandardsSeparator):
				errs = append(errs, domain.NewFieldError(field,
					fmt.Sprintf("must not contain %q", domain.StandardsSeparator), s))
			}
		}
	}
	return errs
}

// validateSequences requires the sequences of one category to be exactly
// 1..n in some order.
func validateSequences(categoryIdx int, concepts []ConceptFile) domain.ValidationErrors {
	var errs domain.ValidationErrors
	seen := make(map[int]int, len(concepts))
	for j, c := range concepts {
		if c.Sequence < 1 {
			continue // reported by the struct tags
		}
		field := fmt.Sprintf("categories[%d].concepts[%d].sequence", categoryIdx, j)
		if prev, dup := seen[c.Sequence]; dup {
			errs = append(errs, domain.NewFieldError(field,
				fmt.Sprintf("duplicates the sequence of concepts[%d]", prev), c.Sequence))
			continue
		}
		seen[c.Sequence] = j
		if c.Sequence > len(concepts) {
			errs = append(errs, domain.NewOutOfRangeError(field, c.Sequence, 1, len(concepts)))
		}
	}
	return errs
}

func fromFieldError(fe validator.FieldError) domain.ValidationError {
	field := fe.Namespace()
	// Drop the root type name.
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return domain.NewMissingFieldError(field)
	case "oneof":
		return domain.ValidationError{
			Field:   field,
			Code:    domain.CodeInvalidFormat,
			Message: "must be one of " + strings.Join(strings.Fields(fe.Param()), ", "),
			Value:   fe.Value(),
		}
	case "gte", "lte":
		if strings.HasSuffix(field, ".difficulty") {
			return domain.NewOutOfRangeError(field, fe.Value(), 0, 10)
		}
		return domain.NewFieldError(field, "must be at least "+fe.Param(), fe.Value())
	case "gt":
		return domain.NewFieldError(field, "must be greater than "+fe.Param(), fe.Value())
	case "min":
		return domain.NewFieldError(field, "must have at least "+fe.Param()+" entries", nil)
	default:
		return domain.NewFieldError(field, "failed "+fe.Tag()+" check", fe.Value())
	}
}

func toDomain(file *File) *domain.DisciplineTemplate {
	progression := make([]string, 0, len(file.Categories))
	prerequisites := make(map[string][]string, len(file.Categories))
	curriculum := make(map[string][]domain.ConceptSpec, len(file.Categories))
	descriptions := make(map[string]string, len(file.Categories))

	for _, c := range file.Categories {
		progression = append(progression, c.Name)
		if len(c.Prerequisites) > 0 {
			prerequisites[c.Name] = c.Prerequisites
		}
		if c.Description != "" {
			descriptions[c.Name] = c.Description
		}
		specs := make([]domain.ConceptSpec, 0, len(c.Concepts))
		for _, cf := range c.Concepts {
			specs = append(specs, domain.ConceptSpec{
				Title:          cf.Title,
				Level:          domain.Level(cf.Level),
				Bloom:          domain.BloomLevel(cf.Bloom),
				Sequence:       cf.Sequence,
				Difficulty:     cf.Difficulty,
				Hours:          cf.Hours,
				Standards:      cf.Standards,
				Objectives:     cf.Objectives,
				Keywords:       cf.Keywords,
				SourceBooks:    cf.SourceBooks,
				SourceChapters: cf.SourceChapters,
			})
		}
		sort.SliceStable(specs, func(i, j int) bool { return specs[i].Sequence < specs[j].Sequence })
		curriculum[c.Name] = specs
	}

	tpl := domain.NewDisciplineTemplate(file.Discipline, file.Description, progression, prerequisites, curriculum)
	for k, v := range descriptions {
		tpl.CategoryDescriptions[k] = v
	}
	return tpl
}
