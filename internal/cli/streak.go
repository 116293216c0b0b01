package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-learn/internal/core/domain"
	"github.com/comitanigiacomo/kanso-learn/internal/core/services"
)

// exportedSession is one element of a session export. session_date accepts
// either YYYY-MM-DD or the RFC 3339 timestamps GET /sessions returns.
type exportedSession struct {
	SessionDate    string `json:"session_date"`
	MinutesStudied int    `json:"minutes_studied"`
}

type streakReport struct {
	domain.StreakResult
	Today            string              `json:"today"`
	ThresholdMinutes int                 `json:"threshold_minutes"`
	Sessions         int                 `json:"sessions"`
	Summary          domain.StudySummary `json:"summary"`
}

func newStreakCmd() *cobra.Command {
	var file, today string
	var threshold, days int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Compute streaks from a session export without a database",
		Long: `Read a JSON array of sessions and print the current and longest streak.
Use --file - to read from stdin.`,
		Example: `  kansoctl streak --file sessions.json --today 2024-03-15
  curl -s -H "Authorization: Bearer $TOKEN" localhost:8080/api/v1/sessions | kansoctl streak --file - --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := domain.CalendarDay(time.Now())
			if today != "" {
				parsed, err := domain.ParseCalendarDate(today)
				if err != nil {
					return err
				}
				ref = parsed
			}

			sessions, err := readExport(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			result, err := domain.AnalyzeStreaks(sessions, ref, threshold)
			if err != nil {
				return err
			}

			summary, err := services.Summarize(sessions, ref, days)
			if err != nil {
				return err
			}

			report := streakReport{
				StreakResult:     result,
				Today:            domain.DateKey(ref),
				ThresholdMinutes: threshold,
				Sessions:         len(sessions),
				Summary:          summary,
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(out, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "session export (JSON array), - for stdin")
	cmd.Flags().StringVar(&today, "today", "", "reference date YYYY-MM-DD (default: local today)")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", domain.DefaultStreakThreshold, "minutes a day needs to count")
	cmd.Flags().IntVar(&days, "days", 30, "length of the summary window")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readExport(stdin io.Reader, path string) ([]*domain.StudySession, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening export: %w", err)
		}
		defer f.Close()
		r = f
	}

	var records []exportedSession
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}

	sessions := make([]*domain.StudySession, 0, len(records))
	for i, rec := range records {
		date, err := parseExportDate(rec.SessionDate)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		sessions = append(sessions, &domain.StudySession{SessionDate: date, MinutesStudied: rec.MinutesStudied})
	}
	return sessions, nil
}

func parseExportDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return domain.CalendarDay(t), nil
	}
	return domain.ParseCalendarDate(raw)
}

func printReport(w io.Writer, r streakReport) {
	fmt.Fprintf(w, "Streaks as of %s (threshold %d min, %d sessions)\n", r.Today, r.ThresholdMinutes, r.Sessions)
	fmt.Fprintf(w, "  current: %d day(s)\n", r.CurrentStreak)
	fmt.Fprintf(w, "  longest: %d day(s)\n", r.LongestStreak)
	fmt.Fprintf(w, "Last %d days: %d active, %d min total", r.Summary.Days, r.Summary.ActiveDays, r.Summary.TotalMinutes)
	if r.Summary.ActiveDays > 0 {
		fmt.Fprintf(w, ", median %.0f min per active day", r.Summary.MedianMinutes)
	}
	fmt.Fprintln(w)
}
