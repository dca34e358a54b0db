package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/rules"
	"github.com/helios-hq/meridian/pkg/rules/engine"
)

// RenderRules writes an aligned table of rules.
func RenderRules(w io.Writer, list []*rules.Rule) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No rules loaded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCAMPAIGN\tCONDITIONS\tACTION\tACTIVE\tLAST TRIGGERED")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			shortID(r.ID),
			r.Name,
			r.CampaignID,
			renderConditions(r.Conditions),
			r.Action.Type,
			r.IsActive,
			renderTime(r.LastTriggeredAt),
		)
	}
	return tw.Flush()
}

// RenderRule writes one rule in long form.
func RenderRule(w io.Writer, r *rules.Rule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", r.Description)
	}
	fmt.Fprintf(tw, "Campaign:\t%s\n", r.CampaignID)
	fmt.Fprintf(tw, "Conditions:\t%s\n", renderConditions(r.Conditions))
	fmt.Fprintf(tw, "Action:\t%s\n", r.Action.Type)
	for k, v := range r.Action.Parameters {
		fmt.Fprintf(tw, "  %s:\t%v\n", k, v)
	}
	fmt.Fprintf(tw, "Active:\t%t\n", r.IsActive)
	fmt.Fprintf(tw, "Created:\t%s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Updated:\t%s\n", r.UpdatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Last triggered:\t%s\n", renderTime(r.LastTriggeredAt))
	return tw.Flush()
}

// RenderLogs writes an aligned table of execution log entries.
func RenderLogs(w io.Writer, entries []*audit.LogEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No log entries.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tRULE\tCAMPAIGN\tACTION\tTRIGGERED\tREASON")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
			e.Timestamp.Format(time.RFC3339),
			e.RuleName,
			e.CampaignID,
			e.ActionType,
			e.Triggered,
			e.Reason,
		)
	}
	return tw.Flush()
}

// RenderStats writes engine statistics.
func RenderStats(w io.Writer, stats engine.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total rules:\t%d\n", stats.TotalRules)
	fmt.Fprintf(tw, "Active rules:\t%d\n", stats.ActiveRules)
	fmt.Fprintf(tw, "Total log entries:\t%d\n", stats.TotalLogs)
	fmt.Fprintf(tw, "Triggered:\t%d\n", stats.TriggeredCount)
	fmt.Fprintf(tw, "Entries last 24h:\t%d\n", stats.RecentLogs)
	fmt.Fprintf(tw, "Success rate:\t%.1f%%\n", stats.SuccessRate)
	return tw.Flush()
}

// RenderPassSummary writes the outcome of one evaluation pass.
func RenderPassSummary(w io.Writer, summary *engine.PassSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Campaigns processed:\t%d\n", summary.CampaignsProcessed)
	fmt.Fprintf(tw, "Campaigns failed:\t%d\n", summary.CampaignsFailed)
	fmt.Fprintf(tw, "Rules evaluated:\t%d\n", summary.RulesEvaluated)
	fmt.Fprintf(tw, "Rules triggered:\t%d\n", summary.RulesTriggered)
	fmt.Fprintf(tw, "Duration:\t%s\n", summary.Duration.Round(time.Millisecond))
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, msg := range summary.Errors {
		if _, err := fmt.Fprintf(w, "error: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

// renderConditions renders a rule's conditions as the fold expression they
// evaluate to, e.g. "spend > 100 AND roas < 1.5".
func renderConditions(conditions []rules.Condition) string {
	var b strings.Builder
	for i, c := range conditions {
		if i > 0 {
			op := conditions[i-1].LogicalOperatorToNext
			if op == "" {
				op = rules.LogicalAnd
			}
			b.WriteString(" ")
			b.WriteString(string(op))
			b.WriteString(" ")
		}
		b.WriteString(c.Field)
		b.WriteString(" ")
		b.WriteString(string(c.Operator))
		b.WriteString(" ")
		b.WriteString(strconv.FormatFloat(c.Threshold, 'f', -1, 64))
	}
	return b.String()
}

func renderTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(time.RFC3339)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
