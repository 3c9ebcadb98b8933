package report

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/timecalc"
)

// MinNameLength is the minimum number of characters in a submitter name.
const MinNameLength = 2

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// ValidationError reports a user input problem detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateName checks the submitter name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < MinNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("name must be at least %d characters", MinNameLength)}
	}
	return nil
}

// ValidateEmail checks an optional email address; blank input is accepted.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "please enter a valid email address"}
	}
	return nil
}

// ValidateSubmitter checks the submitter name and the optional extra recipient.
func ValidateSubmitter(name, email string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return ValidateEmail(email)
}

// ValidateEntry checks a single entry sub-form.
func ValidateEntry(name, start, end string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "project", Message: "project name is required"}
	}
	if start == "" || end == "" {
		return &ValidationError{Field: "time", Message: "start and end time are required"}
	}
	if err := timecalc.ValidateRange(start, end); err != nil {
		if errors.Is(err, timecalc.ErrEndNotAfterStart) {
			return &ValidationError{Field: "time", Message: "end time must be after start time"}
		}
		return &ValidationError{Field: "time", Message: err.Error()}
	}
	return nil
}

// ValidateRequest checks a decoded request on the receiving side.
func ValidateRequest(req model.ReportRequest) error {
	if err := ValidateSubmitter(req.UserName, req.AdditionalEmail); err != nil {
		return err
	}
	if len(req.Projects) == 0 {
		return &ValidationError{Field: "projects", Message: "at least one project is required"}
	}
	for i, p := range req.Projects {
		if err := ValidateEntry(p.Name, p.StartTime, p.EndTime); err != nil {
			return fmt.Errorf("project %d: %w", i+1, err)
		}
	}
	if _, err := model.ParseFormat(string(req.Format)); err != nil {
		return &ValidationError{Field: "format", Message: err.Error()}
	}
	return nil
}
