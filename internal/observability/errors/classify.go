// Package errors normalizes errors into stable class names used as metric
// tags and in failure notification payloads.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/target/taskd/internal/errors"
)

// Classify returns a normalized error class for tagging metrics and
// notifications. Coded application errors classify by their code so evaluator
// failures, timeouts, and store errors stay distinguishable; anything else
// unwraps to the innermost concrete type and converts it to snake_case-ish.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) && appErr.Code != "" {
		return string(appErr.Code)
	}

	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
