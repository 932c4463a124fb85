package errors

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryStorage Category = "storage"
	CategoryCLI     Category = "cli"
)

// Location is a position in a file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// DropzoneError is a structured error with a code, an optional location and
// a fix suggestion.
type DropzoneError struct {
	// Code is a unique error identifier (e.g., "DZ101").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where in a file the error occurred.
	Location *Location

	// Context holds the file lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *DropzoneError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DropzoneError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location and reads the surrounding lines.
func (e *DropzoneError) WithLocation(file string, line, column int) *DropzoneError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithOffset converts a byte offset in data, such as the one reported by
// json.SyntaxError, into a location in file.
func (e *DropzoneError) WithOffset(file string, data []byte, offset int64) *DropzoneError {
	if offset < 0 || offset > int64(len(data)) {
		return e
	}
	head := data[:offset]
	line := bytes.Count(head, []byte("\n")) + 1
	column := int(offset) - bytes.LastIndexByte(head, '\n') - 1
	if column < 1 {
		column = 1
	}
	return e.WithLocation(file, line, column)
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DropzoneError) WithSuggestion(s string) *DropzoneError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *DropzoneError) WithDetail(d string) *DropzoneError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *DropzoneError) Wrap(err error) *DropzoneError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a DropzoneError from a registered error code.
func New(code string) *DropzoneError {
	template, ok := registry[code]
	if !ok {
		return &DropzoneError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DropzoneError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a DropzoneError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *DropzoneError {
	return &DropzoneError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError returns err as a DropzoneError, wrapping it under code when it
// is not one already.
func FromError(err error, code string) *DropzoneError {
	if err == nil {
		return nil
	}
	var de *DropzoneError
	if stderrors.As(err, &de) {
		return de
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is a DropzoneError with the given code.
func HasCode(err error, code string) bool {
	var de *DropzoneError
	return stderrors.As(err, &de) && de.Code == code
}
