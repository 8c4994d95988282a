package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Ada Lovelace", false},
		{"apostrophe and hyphen", "Mary-Jane O'Brien", false},
		{"trimmed whitespace ok", "  Ada  ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"digits rejected", "Ada123", true},
		{"symbols rejected", "Ada <script>", true},
		{"no letters", "-- --", true},
		{"too short", "A", true},
		{"too long", strings.Repeat("a", 51), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DisplayName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDisplayName_FieldError(t *testing.T) {
	err := DisplayName("")
	var ve *Error
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestPassword(t *testing.T) {
	assert.Error(t, Password(""))
	assert.Error(t, Password("12345"))
	assert.NoError(t, Password("123456"))
}

func TestNewPassword(t *testing.T) {
	assert.NoError(t, NewPassword("secret1", "secret1"))
	assert.Error(t, NewPassword("secret1", ""))
	assert.Error(t, NewPassword("secret1", "secret2"))
	assert.Error(t, NewPassword("short", "short"))
}

func TestIssueTitle(t *testing.T) {
	assert.NoError(t, IssueTitle("Fix login crash"))
	assert.Error(t, IssueTitle("   "))
	assert.NoError(t, IssueTitle(strings.Repeat("a", 200)))
	assert.Error(t, IssueTitle(strings.Repeat("a", 201)))
}

func TestIssueDescription(t *testing.T) {
	assert.NoError(t, IssueDescription(""))
	assert.NoError(t, IssueDescription(strings.Repeat("a", 1000)))
	assert.Error(t, IssueDescription(strings.Repeat("a", 1001)))
}

func TestDueDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	assert.Error(t, DueDate(now.AddDate(0, 0, -1), now), "yesterday is rejected")
	assert.NoError(t, DueDate(now, now), "today is allowed")
	// Earlier clock time on the same day still counts as today.
	assert.NoError(t, DueDate(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), now))
	assert.NoError(t, DueDate(now.AddDate(0, 0, 1), now))
}

func TestProjectName(t *testing.T) {
	assert.NoError(t, ProjectName("Tracker"))
	assert.Error(t, ProjectName(" "))
}
