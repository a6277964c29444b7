// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/stellarcyber/support-tools/pkg/tiering"
)

// OutputFormat defines the output format type.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

// FormatReport formats a transition report in the specified format.
func FormatReport(r *tiering.Report, format OutputFormat) string {
	switch format {
	case FormatJSON:
		return formatJSON(r)
	case FormatTable:
		return formatReportTable(r)
	default:
		return formatReportText(r)
	}
}

// FormatStrings formats a plain string list (prefixes, index IDs).
func FormatStrings(name string, values []string, format OutputFormat) string {
	switch format {
	case FormatJSON:
		return formatJSON(map[string][]string{name: values})
	default:
		if len(values) == 0 {
			return fmt.Sprintf("No %s\n", name)
		}
		return strings.Join(values, "\n") + "\n"
	}
}

// FormatPolicies formats lifecycle policies in the specified format.
func FormatPolicies(policies []tiering.LifecyclePolicy, format OutputFormat) string {
	switch format {
	case FormatJSON:
		return formatJSON(policies)
	case FormatTable:
		return formatPoliciesTable(policies)
	default:
		return formatPoliciesText(policies)
	}
}

// FormatError formats an error message in the specified format.
func FormatError(err error, format OutputFormat) string {
	switch format {
	case FormatJSON:
		return formatJSON(map[string]string{"error": err.Error()})
	default:
		return fmt.Sprintf("Error: %s\n", err)
	}
}

func formatJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data) + "\n"
}

func formatReportText(r *tiering.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s)\n", r.RunID, r.Operation)
	fmt.Fprintf(&b, "  Scanned:   %d\n", r.Scanned)
	fmt.Fprintf(&b, "  Matched:   %d\n", r.Matched)
	fmt.Fprintf(&b, "  Succeeded: %d\n", r.Succeeded)
	fmt.Fprintf(&b, "  Skipped:   %d\n", r.Skipped)
	fmt.Fprintf(&b, "  Failed:    %d\n", r.Failed)
	fmt.Fprintf(&b, "  Not ready: %d\n", r.NotReady)
	for _, state := range sortedStateNames(r.RestoreStates) {
		fmt.Fprintf(&b, "  Restore %s: %d\n", state, r.RestoreStates[state])
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "  FAILED %s: %s\n", f.Key, f.Reason)
	}
	if r.Fatal != "" {
		fmt.Fprintf(&b, "  ABORTED: %s\n", r.Fatal)
	}
	return b.String()
}

func formatReportTable(r *tiering.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-10s %-10s %-10s %-10s %-10s\n",
		"OPERATION", "SCANNED", "MATCHED", "SUCCEEDED", "SKIPPED", "FAILED")
	fmt.Fprintf(&b, "%-12s %-10d %-10d %-10d %-10d %-10d\n",
		r.Operation, r.Scanned, r.Matched, r.Succeeded, r.Skipped, r.Failed)
	if r.NotReady > 0 {
		fmt.Fprintf(&b, "%d object(s) not ready; re-run later\n", r.NotReady)
	}
	for _, state := range sortedStateNames(r.RestoreStates) {
		fmt.Fprintf(&b, "restore %s: %d\n", state, r.RestoreStates[state])
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "FAILED %s: %s\n", f.Key, f.Reason)
	}
	if r.Fatal != "" {
		fmt.Fprintf(&b, "ABORTED: %s\n", r.Fatal)
	}
	return b.String()
}

func sortedStateNames(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatPoliciesText(policies []tiering.LifecyclePolicy) string {
	if len(policies) == 0 {
		return "No lifecycle policies\n"
	}
	var b strings.Builder
	for _, p := range policies {
		fmt.Fprintf(&b, "%s: %s after %d day(s)", p.ID, p.Action, p.RetentionDays)
		if p.Prefix != "" {
			fmt.Fprintf(&b, " (prefix %s)", p.Prefix)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatPoliciesTable(policies []tiering.LifecyclePolicy) string {
	if len(policies) == 0 {
		return "No lifecycle policies\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %-25s %-10s %s\n", "ID", "ACTION", "DAYS", "PREFIX")
	for _, p := range policies {
		fmt.Fprintf(&b, "%-30s %-25s %-10d %s\n", p.ID, p.Action, p.RetentionDays, p.Prefix)
	}
	return b.String()
}
