package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("Issue moved to %s", "Done")
	assert.Contains(t, out.String(), "Issue moved to Done")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("showing cached data")
	assert.Contains(t, errOut.String(), "showing cached data")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("Failed to move issue")
	assert.Contains(t, errOut.String(), "Failed to move issue")
}

func TestVerboseLog(t *testing.T) {
	u, out, _ := newTestUI()
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())

	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "Yes\n", true},
		{"no", "n\n", false},
		{"empty answer declines", "\n", false},
		{"closed stdin declines", "", false},
		{"anything else declines", "sure\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, out, _ := newTestUI()
			u.In = strings.NewReader(tt.input)
			assert.Equal(t, tt.want, u.Confirm("Delete issue %s?", "i1"))
			assert.Contains(t, out.String(), "Delete issue i1? [y/N]")
		})
	}
}

func TestColorHelpers(t *testing.T) {
	assert.NotEmpty(t, Cyan("test"))
	assert.NotEmpty(t, Green("test"))
	assert.NotEmpty(t, Yellow("test"))
	assert.NotEmpty(t, Red("test"))
}

func TestStatusColor(t *testing.T) {
	assert.Contains(t, StatusColor(models.IssueStatusOpen), "To Do")
	assert.Contains(t, StatusColor(models.IssueStatusInProgress), "In Progress")
	assert.Contains(t, StatusColor(models.IssueStatusDone), "Done")
	assert.Equal(t, "archived", StatusColor(models.IssueStatus("archived")))
}

func TestPriorityColor(t *testing.T) {
	assert.Contains(t, PriorityColor(models.IssuePriorityLow), "low")
	assert.Contains(t, PriorityColor(models.IssuePriorityUrgent), "urgent")
	assert.Equal(t, "whatever", PriorityColor(models.IssuePriority("whatever")))
}

func TestProgressColor(t *testing.T) {
	assert.Contains(t, ProgressColor(90), "90%")
	assert.Contains(t, ProgressColor(60), "60%")
	assert.Contains(t, ProgressColor(10), "10%")
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Title", "Status"})
	require.NotNil(t, table)

	table.Append([]string{"Fix login crash", "To Do"})
	table.Append([]string{"Ship exports", "Done"})
	require.NoError(t, table.Render())

	result := out.String()
	assert.True(t, strings.Contains(result, "Fix login crash"))
	assert.True(t, strings.Contains(result, "Ship exports"))
}
