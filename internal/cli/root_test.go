package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"habitgrid/internal/service/completion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"period", "onboard", "log", "grid", "totals"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestPeriodCommand(t *testing.T) {
	out, err := run(t, "period", "weekly", "--at", "2025-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-30\n", out)

	out, err = run(t, "period", "monthly", "--at", "2025-02-17", "--format", "json")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "2025-02-01", body["period_key"])

	_, err = run(t, "period", "yearly")
	assert.Error(t, err)

	_, err = run(t, "period", "daily", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestOnboardLogGrid(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, "--db", db, "--format", "json", "onboard", "--user", "u1", "--name", "Ana", "--title", "Yoga", "--marker", "*")
	require.NoError(t, err)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.ID)

	out, err = run(t, "--db", db, "log", "--user", "u1", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "(total 1)")

	_, err = run(t, "--db", db, "log", "--user", "u1", created.ID)
	assert.EqualError(t, err, "You already logged it today!")

	_, err = run(t, "--db", db, "log", "--user", "u2", created.ID)
	assert.Error(t, err)

	out, err = run(t, "--db", db, "grid", "--user", "u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "layout: square, columns: 1, empty: 0"))
	assert.Contains(t, out, "Ana (you)")

	out, err = run(t, "--db", db, "totals", created.ID, "missing")
	require.NoError(t, err)
	assert.Contains(t, out, created.ID+"\t1")
	assert.Contains(t, out, "missing\t0")
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printOutcome(&buf, &completion.Outcome{HabitID: "h1", PeriodKey: "2025-01-08", Totals: map[string]int{"h1": 3}}))
	assert.Equal(t, "logged h1 for 2025-01-08 (total 3)\n", buf.String())

	buf.Reset()
	require.NoError(t, printOutcome(&buf, &completion.Outcome{HabitID: "h1", PeriodKey: "2025-01-08", RefreshError: "connection reset"}))
	assert.Equal(t, "logged h1 for 2025-01-08 (totals not refreshed: connection reset)\n", buf.String())
	assert.NotContains(t, buf.String(), "total 0")
}
