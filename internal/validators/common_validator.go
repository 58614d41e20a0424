package validators

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"carrental/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

var (
	plateRegex    = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-\s]{2,13}[A-Z0-9]$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	htmlTagRegex  = regexp.MustCompile(`<[^>]*>`)
	plateStripper = strings.NewReplacer(" ", "", "-", "")
)

func init() {
	validate = validator.New()

	// Register custom validation functions
	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("license_plate", validateLicensePlate)
	validate.RegisterValidation("date_string", validateDateString)
	validate.RegisterValidation("model_year", validateModelYear)
	validate.RegisterValidation("coordinates", validateCoordinates)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return ValidationErrors{{Message: err.Error()}}
		}
		for _, fe := range fieldErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Value:   fmt.Sprintf("%v", fe.Value()),
				Message: getErrorMessage(fe),
			})
		}
	}

	return validationErrors
}

// Validate runs ValidateStruct and folds any failures into a single
// application validation error.
func Validate(s interface{}) error {
	if errs := ValidateStruct(s); len(errs) > 0 {
		return utils.NewValidationError("%s", errs.Error())
	}
	return nil
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "object_id":
		return fmt.Sprintf("%s is not a valid ID", err.Field())
	case "phone_number":
		return "Invalid phone number format"
	case "license_plate":
		return "Invalid number plate format"
	case "date_string":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD or RFC 3339)", err.Field())
	case "model_year":
		return fmt.Sprintf("%s is not a valid model year", err.Field())
	case "coordinates":
		return "Invalid GPS coordinates"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", err.Field())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}

// Custom validation functions
func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := strings.ReplaceAll(fl.Field().String(), " ", "")
	if phone == "" {
		return true
	}
	return phoneRegex.MatchString(phone)
}

func validateLicensePlate(fl validator.FieldLevel) bool {
	plate := fl.Field().String()
	if plate == "" {
		return true
	}
	return plateRegex.MatchString(strings.ToUpper(strings.TrimSpace(plate)))
}

func validateDateString(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := utils.ParseDate(value)
	return err == nil
}

func validateModelYear(fl validator.FieldLevel) bool {
	year := int(fl.Field().Int())
	if year == 0 {
		return true
	}
	return year >= 1950 && year <= time.Now().Year()+1
}

func validateCoordinates(fl validator.FieldLevel) bool {
	coords, ok := fl.Field().Interface().([]float64)
	if !ok || len(coords) != 2 {
		return false
	}
	lng, lat := coords[0], coords[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// ParseObjectID parses a hex id, naming field in the validation error.
func ParseObjectID(value, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
	if err != nil {
		return primitive.NilObjectID, utils.NewValidationError("%s is not a valid ID", field)
	}
	return id, nil
}

// NormalizeNumberPlate upper-cases a plate and drops spaces and hyphens so
// "ts 09-ab 1234" and "TS09AB1234" collide on the unique index.
func NormalizeNumberPlate(plate string) string {
	return plateStripper.Replace(strings.ToUpper(strings.TrimSpace(plate)))
}

func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(input, ""))
}
