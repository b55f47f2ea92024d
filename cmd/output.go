package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"flow-vault/core/models"
	"flow-vault/core/retention"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

var jsonOutput bool

func statusStyle(status string) string {
	color := "10"
	switch status {
	case string(models.StatusPartialSuccess), string(models.ObjectSkipped):
		color = "11"
	case string(models.StatusFailed), string(models.ObjectError):
		color = "9"
	case string(models.StatusAborted):
		color = "13"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(status)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().
					Foreground(lipgloss.Color("86")).
					Bold(true).
					Align(lipgloss.Center)
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
		}).
		Headers(headers...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeSummary(w io.Writer, s *models.Summary) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("==> %s %s", s.Operation, statusStyle(string(s.Status)))))
	if s.Reason != "" {
		fmt.Fprintln(w, labelStyle.Render("  reason: ")+s.Reason)
	}
	fmt.Fprintln(w)

	types := make([]models.ResourceType, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Rank() < types[j].Rank() })

	t := newTable("type", "total", "created", "updated", "skipped", "errors")
	for _, rt := range types {
		c := s.ByType[rt]
		t.Row(string(rt), itoa(c.Total), itoa(c.Created), itoa(c.Updated), itoa(c.Skipped), itoa(c.Errors))
	}
	t.Row("all", itoa(s.Total), itoa(s.Created), itoa(s.Updated), itoa(s.Skipped), itoa(s.Errors))
	fmt.Fprintln(w, t)

	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  api calls: %d  retries: %d  avg latency: %dms  duration: %s",
		s.APICalls, s.Retries, s.AvgLatencyMs, s.Duration.Round(time.Millisecond))))
	if s.Changes != nil {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  since %s: +%d ~%d -%d (=%d)",
			shortID(s.Changes.BaselineVersionID), s.Changes.Added, s.Changes.Modified, s.Changes.Removed, s.Changes.Unchanged)))
	}
	if s.VersionID != "" {
		fmt.Fprintln(w, labelStyle.Render("  version: ")+s.VersionID)
	}
	if s.AuditID != "" {
		fmt.Fprintln(w, labelStyle.Render("  audit:   ")+s.AuditID)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintln(w, warnStyle.Render("  [warn] "+warn))
	}
	for _, e := range s.ErrorMessages {
		fmt.Fprintln(w, errorStyle.Render("  [error] "+e))
	}
}

func writeVersions(w io.Writer, versions []models.Version) {
	if len(versions) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no versions found"))
		return
	}
	t := newTable("id", "created", "operation", "profile", "platform", "status", "objects", "tags")
	for _, v := range versions {
		t.Row(
			v.ID,
			v.CreatedAt.Format("2006-01-02 15:04:05"),
			string(v.Operation),
			shortID(v.ProfileID),
			v.PlatformVersion,
			statusStyle(string(v.Status)),
			itoa(v.Summary.Total),
			strings.Join(v.Tags, ","),
		)
	}
	fmt.Fprintln(w, t)
}

func writeRecords(w io.Writer, records []models.ObjectRecord) {
	t := newTable("type", "id", "name", "status", "action", "message")
	for _, r := range records {
		t.Row(string(r.ResourceType), r.ResourceID, r.Name, statusStyle(string(r.Report.Status)), string(r.Report.Action), r.Report.Message)
	}
	fmt.Fprintln(w, t)
}

func writeAudits(w io.Writer, audits []models.AuditRecord) {
	if len(audits) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no audit records found"))
		return
	}
	t := newTable("id", "created", "operation", "status", "version", "duration", "reason")
	for _, a := range audits {
		version := ""
		if a.VersionID != nil {
			version = shortID(*a.VersionID)
		}
		t.Row(
			shortID(a.ID),
			a.CreatedAt.Format("2006-01-02 15:04:05"),
			string(a.Operation),
			statusStyle(string(a.Status)),
			version,
			fmt.Sprintf("%dms", a.DurationMs),
			a.Reason,
		)
	}
	fmt.Fprintln(w, t)
}

func writeRetention(w io.Writer, res retention.Result) {
	t := newTable("id", "created", "operation", "decision", "reasons")
	for _, d := range res.Retain {
		t.Row(d.Version.ID, d.Version.CreatedAt.Format("2006-01-02 15:04:05"), string(d.Version.Operation), "retain", strings.Join(d.Reasons, ","))
	}
	for _, d := range res.Eligible {
		t.Row(d.Version.ID, d.Version.CreatedAt.Format("2006-01-02 15:04:05"), string(d.Version.Operation), warnStyle.Render("delete"), "")
	}
	fmt.Fprintln(w, t)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  retain: %d  eligible: %d", len(res.Retain), len(res.Eligible))))
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
