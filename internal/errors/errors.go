// Package errors wraps failures with a component and category so the CLI can
// pick exit messages and report fatal ones to telemetry.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"strings"
	"sync/atomic"
	"time"
)

// ErrorCategory groups errors for exit messages and telemetry.
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryDatabase      ErrorCategory = "database"
	CategoryCompile       ErrorCategory = "bbcode-compile"
	CategoryCatalog       ErrorCategory = "catalog"
	CategoryMigration     ErrorCategory = "migration"
	CategoryLock          ErrorCategory = "lock"
	CategoryNetwork       ErrorCategory = "network"
	CategoryNotFound      ErrorCategory = "not-found"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryCancellation  ErrorCategory = "cancellation"
	CategoryGeneric       ErrorCategory = "generic"
)

// ComponentUnknown is used when the component is not set.
const ComponentUnknown = "unknown"

// EnhancedError is an error tagged with where it happened and what kind it is.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time

	reported atomic.Bool
}

func (ee *EnhancedError) Error() string { return ee.Err.Error() }

func (ee *EnhancedError) Unwrap() error { return ee.Err }

// Is matches another EnhancedError by category, otherwise the wrapped chain.
func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return stderrors.Is(ee.Err, target)
}

// GetContext returns a copy of the context values, or nil.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	return maps.Clone(ee.Context)
}

// MarkReported records that telemetry has seen this error.
func (ee *EnhancedError) MarkReported() { ee.reported.Store(true) }

// IsReported reports whether MarkReported was called.
func (ee *EnhancedError) IsReported() bool { return ee.reported.Load() }

// ErrorBuilder assembles an EnhancedError.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New starts an error around err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf starts an error from a format string.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context attaches a key/value pair, e.g. the table or tag involved.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any, 2)
	}
	eb.context[key] = value
	return eb
}

// Build finalizes the error and hands it to the telemetry reporter, if one
// is installed. An unset category is inherited from the wrapped error or
// guessed from its message.
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
	if ee.Err == nil {
		ee.Err = stderrors.New("unknown error")
	}
	if ee.Component == "" {
		ee.Component = ComponentUnknown
	}
	if ee.Category == "" {
		ee.Category = detectCategory(ee.Err)
	}

	reportToTelemetry(ee)
	return ee
}

var messageCategories = []struct {
	needle   string
	category ErrorCategory
}{
	{"context canceled", CategoryCancellation},
	{"deadline exceeded", CategoryTimeout},
	{"timeout", CategoryTimeout},
	{"connection refused", CategoryNetwork},
	{"no such host", CategoryNetwork},
	{"invalid", CategoryValidation},
	{"validation", CategoryValidation},
}

func detectCategory(err error) ErrorCategory {
	var inner *EnhancedError
	if stderrors.As(err, &inner) && inner.Category != "" {
		return inner.Category
	}

	msg := strings.ToLower(err.Error())
	for _, mc := range messageCategories {
		if strings.Contains(msg, mc.needle) {
			return mc.category
		}
	}
	return CategoryGeneric
}

// ValidationError creates a validation error from a message.
func ValidationError(message string) *EnhancedError {
	return New(stderrors.New(message)).Category(CategoryValidation).Build()
}

// DatabaseError wraps a data-access failure for the given operation and table.
func DatabaseError(err error, operation, table string) *EnhancedError {
	return New(fmt.Errorf("%s %s: %w", operation, table, err)).
		Component("datastore").
		Category(CategoryDatabase).
		Context("operation", operation).
		Context("table", table).
		Build()
}

// Standard library passthroughs, so callers need only this package.

func NewStd(text string) error { return stderrors.New(text) }

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// IsCategory reports whether err wraps an EnhancedError of category.
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	return stderrors.As(err, &ee) && ee.Category == category
}

// IsNotFound reports whether err wraps a CategoryNotFound error.
func IsNotFound(err error) bool {
	return IsCategory(err, CategoryNotFound)
}
