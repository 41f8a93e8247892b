package types

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type IngestParams struct {
	Tags     []string `json:"tags,omitempty"`
	Synonyms []string `json:"synonyms,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

type IngestRequest struct {
	RequestID        int              `json:"request_id" validate:"required"`
	PreSignedURL     string           `json:"pre_signed_url" validate:"required"`
	FileName         string           `json:"file_name" validate:"required"`
	OriginalFileName string           `json:"original_file_name" validate:"required"`
	FileType         string           `json:"file_type" validate:"required"`
	ProcessType      string           `json:"process_type" validate:"required"`
	Namespace        string           `json:"namespace"`
	StatusPath       string           `json:"response_data_api_path"`
	Metadata         []map[string]any `json:"metadata"`
	Params           IngestParams     `json:"params"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *IngestRequest) Validate() map[string]string {
	validate := validator.New()
	if err := validate.Struct(params); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: http.StatusUnprocessableEntity,
		Errors: errors,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}
