package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"mediarag/ingest"
	"mediarag/types"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	if ApiError, ok := err.(Error); ok {
		return c.Status(ApiError.Code).JSON(ApiError)
	}
	if ValError, ok := err.(types.ValidationError); ok {
		return c.Status(ValError.Status).JSON(ValError)
	}

	ApiError := NewError(statusForError(err), err.Error())
	curTime := time.Now()
	fmt.Printf("%s Request failed with code %d and message: %s\n", &curTime, ApiError.Code, ApiError.Message)
	return c.Status(ApiError.Code).JSON(ApiError)
}

// statusForError maps pipeline taxonomy errors onto HTTP codes.
func statusForError(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, ingest.ErrUnsupportedType):
		return fiber.StatusBadRequest
	case errors.Is(err, ingest.ErrConfiguration):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ingest.ErrAcquisition):
		return fiber.StatusBadGateway
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the Error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrUnsupported(fileType, processType string) Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: fmt.Sprintf("unsupported file/process type: %s/%s", fileType, processType),
	}
}
