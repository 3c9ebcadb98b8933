package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-report/internal/model"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"Ada", false},
		{"Jo", false},
		{"J", true},
		{"", true},
		{"   ", true},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			assert.True(t, IsValidation(err))
		} else {
			assert.NoError(t, err, tt.name)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"", "  ", "a.b@company.com", "X+tag@Sub.Example.ORG", " me@example.io "}
	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}
	invalid := []string{"nope", "a@b", "a@b.c", "@example.com", "a b@example.com"}
	for _, e := range invalid {
		assert.Error(t, ValidateEmail(e), e)
	}
}

func TestValidateEntry(t *testing.T) {
	assert.NoError(t, ValidateEntry("Design", "09:00", "09:30"))

	err := ValidateEntry("Design", "09:30", "09:30")
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "time", ve.Field)
	assert.Equal(t, "end time must be after start time", ve.Message)

	assert.Error(t, ValidateEntry("", "09:00", "10:00"))
	assert.Error(t, ValidateEntry("Design", "", "10:00"))
	assert.Error(t, ValidateEntry("Design", "nine", "10:00"))
}

func TestValidateRequest(t *testing.T) {
	req := model.ReportRequest{
		UserName: "Ada Lovelace",
		Date:     "Friday, February 27, 2026",
		Projects: []model.Entry{entry("A", "09:00", "10:00", 60)},
	}
	assert.NoError(t, ValidateRequest(req))

	noProjects := req
	noProjects.Projects = nil
	assert.Error(t, ValidateRequest(noProjects))

	badRange := req
	badRange.Projects = []model.Entry{entry("A", "10:00", "09:00", -60)}
	err := ValidateRequest(badRange)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "project 1")

	badFormat := req
	badFormat.Format = "docx"
	assert.Error(t, ValidateRequest(badFormat))
}
