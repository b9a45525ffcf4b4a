package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput              = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON             = errors.New("invalid JSON format")
	ErrMultipleJSON            = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound            = errors.New("file not found")
	ErrFileEmpty               = errors.New("file is empty")
	ErrNoInput                 = errors.New("no input provided: please specify a file or pipe JSON data to stdin")
	ErrInvalidFilePath         = errors.New("invalid file path")
	ErrNotContainer            = errors.New("top-level value must be an object or an array")
	ErrTemplateNotFound        = errors.New("template not found")
	ErrTemplateNameRequired    = errors.New("template name is required")
	ErrTemplateContentRequired = errors.New("template content is required")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypePath     ErrorType = "path"
	ErrorTypeDiff     ErrorType = "diff"
	ErrorTypeDesign   ErrorType = "design"
	ErrorTypeTemplate ErrorType = "template"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Side names which of two compared documents an error belongs to.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Side    Side
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	msg := e.Message
	if e.Side != SideNone {
		msg = fmt.Sprintf("%s side: %s", e.Side, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewInvalidJSONError tags a parse failure with the side of the comparison
// it came from. The parser message is kept as the error message.
func NewInvalidJSONError(side Side, err error) *AppError {
	message := "invalid JSON"
	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		err = appErr.Err
	} else if err != nil {
		message = err.Error()
		err = ErrInvalidJSON
	}
	if err == nil {
		err = ErrInvalidJSON
	}
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Side:    side,
		Err:     err,
	}
}

// NewPathError creates a new error related to JSON path resolution
func NewPathError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypePath,
		Message: message,
		Err:     err,
	}
}

// NewDiffError creates a new error related to document comparison
func NewDiffError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDiff,
		Message: message,
		Err:     err,
	}
}

// NewDesignError creates a new error related to the structure designer
func NewDesignError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDesign,
		Message: message,
		Err:     err,
	}
}

// NewTemplateError creates a new error related to the template store
func NewTemplateError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTemplate,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// SideOf reports the comparison side carried by err, if any.
func SideOf(err error) Side {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Side
	}
	return SideNone
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			if appErr.Side != SideNone {
				return fmt.Sprintf("JSON parsing error (%s): %s", appErr.Side, appErr.Message)
			}
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypePath:
			return fmt.Sprintf("Path error: %s", appErr.Message)
		case ErrorTypeDiff:
			return fmt.Sprintf("Compare error: %s", appErr.Message)
		case ErrorTypeDesign:
			return fmt.Sprintf("Designer error: %s", appErr.Message)
		case ErrorTypeTemplate:
			return fmt.Sprintf("Template error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON value."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrTemplateNotFound) {
		return "Error: Template not found."
	}

	return fmt.Sprintf("Error: %v", err)
}
