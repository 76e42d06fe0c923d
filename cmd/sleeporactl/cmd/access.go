// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cmd

import (
	"encoding/json"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taibuivan/sleepora/internal/access"
	"github.com/taibuivan/sleepora/pkg/pagination"
)

// # Roles

func newRoleCommand(state *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "role",
		Short: "Manage profile roles",
	}

	grant := &cobra.Command{
		Use:   "grant <subject> <role>",
		Short: "Assign a role to the profile behind an identity subject",
		Long:  "Assign a role directly, bypassing the caller checks of the HTTP API. Used to bootstrap the first super_admin.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := state.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			updated, err := deps.profiles.AssignRole(state.operatorContext(cmd.Context()), args[0], access.Role(args[1]))
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s (%s) is now %s\n", updated.Subject, updated.ID, updated.Role)
			return nil
		},
	}

	command.AddCommand(grant)
	return command
}

// # Rules

func newRulesCommand(state *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "rules",
		Short: "Manage per-subject access rules",
	}

	var filter access.RuleFilter
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List access rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := state.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			rules, total, err := deps.access.ListRules(cmd.Context(), filter, pagination.Params{Page: 1, Limit: limit})
			if err != nil {
				return err
			}

			table := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printf(table, "ID\tSUBJECT\tRESOURCE\tACTION\tALLOW\tREASON\n")
			for _, rule := range rules {
				printf(table, "%s\t%s\t%s\t%s\t%t\t%s\n", rule.ID, rule.Subject, rule.Resource, rule.Action, rule.Allow, rule.Reason)
			}
			if err := table.Flush(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%d of %d rules\n", len(rules), total)
			return nil
		},
	}
	list.Flags().StringVar(&filter.Subject, "subject", "", "only rules for this subject")
	list.Flags().StringVar(&filter.Resource, "resource", "", "only rules for this resource")
	list.Flags().IntVar(&limit, "limit", 50, "maximum rules to print")

	var deny bool
	var reason string
	set := &cobra.Command{
		Use:   "set <subject> <resource> <action>",
		Short: "Create or replace the rule for a subject, resource and action",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := state.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			allow := !deny
			rule, err := deps.access.SaveRule(state.operatorContext(cmd.Context()), access.RuleInput{
				Subject:  args[0],
				Resource: args[1],
				Action:   args[2],
				Allow:    &allow,
				Reason:   reason,
			})
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "rule %s saved: %s %s/%s allow=%t\n", rule.ID, rule.Subject, rule.Resource, rule.Action, rule.Allow)
			return nil
		},
	}
	set.Flags().BoolVar(&deny, "deny", false, "record a denial instead of a grant")
	set.Flags().StringVar(&reason, "reason", "", "reason reported with the decision")

	remove := &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete an access rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := state.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.access.DeleteRule(state.operatorContext(cmd.Context()), args[0]); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "rule %s deleted\n", args[0])
			return nil
		},
	}

	command.AddCommand(list, set, remove)
	return command
}

// # Check

func newCheckCommand(state *app) *cobra.Command {
	var asJSON bool
	command := &cobra.Command{
		Use:   "check <subject> <resource> <action>",
		Short: "Evaluate an access check exactly as the API guard does",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := state.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			decision, err := deps.access.CheckAccess(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printDecision(cmd, decision, asJSON)
		},
	}
	command.Flags().BoolVar(&asJSON, "json", false, "print the decision as JSON")
	return command
}

func printDecision(cmd *cobra.Command, decision access.Decision, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(decision)
	}

	verdict := "DENY"
	if decision.Allowed {
		verdict = "ALLOW"
	}
	printf(cmd.OutOrStdout(), "%s (%s)\n", verdict, decision.Reason)
	if decision.Rule != nil {
		printf(cmd.OutOrStdout(), "rule %s set by %s\n", decision.Rule.ID, decision.Rule.CreatedBy)
	}
	return nil
}
