package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ugandalearn/learn-service/internal/models"
)

var subjectCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// registerDomainRules registers the custom tags used by request DTOs
func registerDomainRules(validate *validator.Validate) {
	validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})

	validate.RegisterValidation("grade_level", func(fl validator.FieldLevel) bool {
		return models.IsValidGradeLevel(fl.Field().String())
	})

	validate.RegisterValidation("language_code", func(fl validator.FieldLevel) bool {
		return models.IsValidLanguage(fl.Field().String())
	})

	validate.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
		return models.ContentType(fl.Field().String()).IsValid()
	})

	validate.RegisterValidation("subject_code", func(fl validator.FieldLevel) bool {
		return subjectCodePattern.MatchString(fl.Field().String())
	})
}

// BusinessValidator handles rules that depend on field presence rather than
// field values, which struct tags cannot see.
type BusinessValidator struct{}

func newBusinessValidator() *BusinessValidator {
	return &BusinessValidator{}
}

// ValidateProfilePatch checks a partial profile update. Nullable columns
// (grade_level, school_name) accept explicit null; NOT NULL columns do not.
func (bv *BusinessValidator) ValidateProfilePatch(patch *models.ProfilePatch) ValidationErrors {
	var errs ValidationErrors

	if patch.FullName.Set {
		switch {
		case patch.FullName.Null:
			errs = append(errs, ValidationError{Field: "full_name", Message: "cannot be null", Rule: "not_null"})
		case strings.TrimSpace(patch.FullName.Value) == "":
			errs = append(errs, ValidationError{Field: "full_name", Message: "is required", Rule: "required"})
		case len(patch.FullName.Value) > 255:
			errs = append(errs, ValidationError{Field: "full_name", Message: "must be at most 255", Value: patch.FullName.Value, Rule: "max"})
		}
	}

	if patch.GradeLevel.Set && !patch.GradeLevel.Null && !models.IsValidGradeLevel(patch.GradeLevel.Value) {
		errs = append(errs, ValidationError{
			Field:   "grade_level",
			Message: "must be a grade from P1-P7, S1-S6 or University",
			Value:   patch.GradeLevel.Value,
			Rule:    "grade_level",
		})
	}

	if patch.SchoolName.Set && !patch.SchoolName.Null && len(patch.SchoolName.Value) > 255 {
		errs = append(errs, ValidationError{Field: "school_name", Message: "must be at most 255", Rule: "max"})
	}

	if patch.LanguagePreference.Set {
		switch {
		case patch.LanguagePreference.Null:
			errs = append(errs, ValidationError{Field: "language_preference", Message: "cannot be null", Rule: "not_null"})
		case !models.IsValidLanguage(patch.LanguagePreference.Value):
			errs = append(errs, ValidationError{
				Field:   "language_preference",
				Message: "must be a supported language code",
				Value:   patch.LanguagePreference.Value,
				Rule:    "language_code",
			})
		}
	}

	return errs
}

// ValidateGradeLevels reports every unknown token in a subject's grade list
func (bv *BusinessValidator) ValidateGradeLevels(levels []string) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool, len(levels))
	for _, level := range levels {
		if !models.IsValidGradeLevel(level) {
			errs = append(errs, ValidationError{
				Field:   "grade_levels",
				Message: "must be a grade from P1-P7, S1-S6 or University",
				Value:   level,
				Rule:    "grade_level",
			})
			continue
		}
		if seen[level] {
			errs = append(errs, ValidationError{Field: "grade_levels", Message: "contains duplicates", Value: level, Rule: "unique"})
		}
		seen[level] = true
	}
	return errs
}
