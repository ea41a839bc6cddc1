package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/tenantkit/db"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

type fakeAuditor struct {
	report  rls.Report
	script  string
	applied rls.ApplyResult
	diag    rls.Diagnostic
	probed  int64
}

func (f *fakeAuditor) VerifyEnabled(context.Context) (rls.Report, error) { return f.report, nil }

func (f *fakeAuditor) ApplySQL(_ context.Context, script string) (rls.ApplyResult, error) {
	f.script = script
	return f.applied, nil
}

func (f *fakeAuditor) TestIsolation(_ context.Context, userID int64) rls.Diagnostic {
	f.probed = userID
	return f.diag
}

func execute(t *testing.T, a *fakeAuditor, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := newCLI(&out)
	c.open = func(context.Context) (auditor, func(), error) {
		return a, func() {}, nil
	}
	c.migrate = func(context.Context) error { return nil }

	cmd := newRootCmd(c)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func protectedReport() rls.Report {
	return rls.Report{
		Schema: "public",
		Tables: []rls.TableStatus{
			{Name: "memberships", RLSEnabled: true, Forced: true},
			{Name: "projects", RLSEnabled: true, Forced: true},
		},
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("protected schema", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, &fakeAuditor{report: protectedReport()}, "verify")
		require.NoError(t, err)
		assert.Contains(t, out, "TABLE")
		assert.Contains(t, out, "projects")
		assert.NotContains(t, out, "unprotected")
	})

	t.Run("unprotected table fails", func(t *testing.T) {
		t.Parallel()
		report := protectedReport()
		report.Tables = append(report.Tables, rls.TableStatus{Name: "boards"})
		report.Unprotected = []string{"boards"}
		report.Missing = []string{"invoices"}

		out, err := execute(t, &fakeAuditor{report: report}, "verify")
		assert.ErrorIs(t, err, errRLSIncomplete)
		assert.Contains(t, out, "unprotected: boards")
		assert.Contains(t, out, "invoices")
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, &fakeAuditor{report: protectedReport()}, "verify", "-o", "json")
		require.NoError(t, err)

		var got rls.Report
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, protectedReport().Tables, got.Tables)
	})

	t.Run("yaml output uses json keys", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, &fakeAuditor{report: protectedReport()}, "verify", "-o", "yaml")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, "public", got["schema"])
		assert.Contains(t, got, "not_forced")
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, &fakeAuditor{}, "verify", "-o", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	a := &fakeAuditor{applied: rls.ApplyResult{Applied: 2, Skipped: 9}}
	out, err := execute(t, a, "apply")
	require.NoError(t, err)
	assert.Equal(t, db.Policies(), a.script, "embedded script is used without a file")
	assert.Contains(t, out, "applied 2 statements, skipped 9")
}

func TestTestIsolation(t *testing.T) {
	t.Parallel()

	t.Run("pass", func(t *testing.T) {
		t.Parallel()
		a := &fakeAuditor{diag: rls.Diagnostic{Success: true, Message: "isolation verified"}}
		out, err := execute(t, a, "test-isolation", "42")
		require.NoError(t, err)
		assert.Equal(t, int64(42), a.probed)
		assert.Equal(t, "PASS  isolation verified\n", out)
	})

	t.Run("fail", func(t *testing.T) {
		t.Parallel()
		a := &fakeAuditor{diag: rls.Diagnostic{Message: "isolation breach"}}
		out, err := execute(t, a, "test-isolation", "42", "-o", "json")
		assert.ErrorIs(t, err, errIsolationFailed)
		assert.JSONEq(t, `{"success":false,"message":"isolation breach"}`, out)
	})

	t.Run("argument validation", func(t *testing.T) {
		t.Parallel()
		a := &fakeAuditor{}
		_, err := execute(t, a, "test-isolation", "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid user id")
		assert.Zero(t, a.probed)

		_, err = execute(t, a, "test-isolation")
		assert.Error(t, err)
	})
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	out, err := execute(t, &fakeAuditor{}, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "migrations applied\n", out)

	var buf bytes.Buffer
	c := newCLI(&buf)
	c.migrate = func(context.Context) error { return errors.New("boom") }
	cmd := newRootCmd(c)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"migrate"})
	assert.EqualError(t, cmd.Execute(), "boom")
}
