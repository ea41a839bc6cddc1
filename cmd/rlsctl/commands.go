package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tenantkit/internal/rlsassets"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

func newVerifyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report tenant tables without row level security",
		Long: `verify lists every tenant-scoped table (manifest plus any table with an
organization_id column) with its RLS state. It exits non-zero when a table is
missing or unprotected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeFn, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			report, err := a.VerifyEnabled(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.print(report, func() { c.printReport(report) }); err != nil {
				return err
			}
			if !report.OK() {
				return errRLSIncomplete
			}
			return nil
		},
	}
}

func newApplyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the RLS policy script",
		Long: `apply runs the policy script in one transaction. Statements whose object
already exists are skipped, so running it repeatedly is safe. Without a
readable file the script embedded in the binary is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, closeFn, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			script, source, err := rlsassets.Policies(c.policyFile)
			if err != nil {
				return err
			}

			res, err := a.ApplySQL(cmd.Context(), script)
			if err != nil {
				return err
			}

			out := struct {
				Source string `json:"source" yaml:"source"`
				rls.ApplyResult
			}{Source: source, ApplyResult: res}
			return c.print(out, func() {
				fmt.Fprintf(c.out, "applied %d statements, skipped %d already present (%s)\n", res.Applied, res.Skipped, source)
			})
		},
	}
	cmd.Flags().StringVarP(&c.policyFile, "file", "f", "", "Policy script (default: RLS_POLICY_FILE)")
	return cmd
}

func newTestIsolationCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "test-isolation USER_ID",
		Short: "Check that a user cannot see rows of other organizations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q: must be an integer", args[0])
			}

			a, closeFn, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			diag := a.TestIsolation(cmd.Context(), userID)
			if err := c.print(diag, func() {
				status := "PASS"
				if !diag.Success {
					status = "FAIL"
				}
				fmt.Fprintf(c.out, "%s  %s\n", status, diag.Message)
			}); err != nil {
				return err
			}
			if !diag.Success {
				return errIsolationFailed
			}
			return nil
		},
	}
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "migrations applied")
			return nil
		},
	}
}

func (c *cli) printReport(r rls.Report) {
	rows := make([][]string, 0, len(r.Tables)+len(r.Missing))
	for _, t := range r.Tables {
		rows = append(rows, []string{t.Name, yesNo(t.RLSEnabled), yesNo(t.Forced)})
	}
	for _, name := range r.Missing {
		rows = append(rows, []string{name, "missing", "missing"})
	}
	c.printTable([]string{"table", "rls", "forced"}, rows)

	if len(r.Unprotected) > 0 {
		fmt.Fprintf(c.out, "\nunprotected: %s\n", strings.Join(r.Unprotected, ", "))
	}
	if len(r.NotForced) > 0 {
		fmt.Fprintf(c.out, "owner bypasses policies on: %s\n", strings.Join(r.NotForced, ", "))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
