package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/pipeline"
)

var candidatesJobID string

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List candidates with their interview status",
	RunE:  runCandidates,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List jobs with candidate progress",
	RunE:  runJobs,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing database tables and indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		database, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		database.Close()
		color.Green("Schema is up to date")
		return nil
	},
}

func init() {
	candidatesCmd.Flags().StringVar(&candidatesJobID, "job", "", "Only list candidates uploaded against this job ID")
	rootCmd.AddCommand(candidatesCmd, jobsCmd, migrateCmd)
}

func runCandidates(cmd *cobra.Command, _ []string) error {
	var jobID *uuid.UUID
	if candidatesJobID != "" {
		id, err := uuid.Parse(candidatesJobID)
		if err != nil {
			return fmt.Errorf("invalid job ID %q: %w", candidatesJobID, err)
		}
		jobID = &id
	}

	cfg, _, err := setup()
	if err != nil {
		return err
	}
	database, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	candidates, err := database.ListCandidates(cmd.Context(), jobID)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		color.Yellow("No candidates found")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Email", "Domain", "Status", "Login", "Score", "Uploaded"})
	for i := range candidates {
		c := &candidates[i]
		table.Append([]string{
			c.FullName,
			c.Email,
			c.Domain,
			statusColor(c.EffectiveStatus()),
			c.TempUsername,
			formatScore(c.MeanScore()),
			c.UploadedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()

	counts := pipeline.Tally(candidates)
	color.Cyan("Total %d | Invited %d | In progress %d | Completed %d",
		counts.Total, counts.Invited, counts.InProgress, counts.Completed)
	return nil
}

func runJobs(cmd *cobra.Command, _ []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	database, err := connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	jobs, err := database.ListJobs(cmd.Context())
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		color.Yellow("No jobs found")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Seniority", "Active", "Resumes", "Progress"})
	for _, j := range jobs {
		table.Append([]string{
			j.ID.String(),
			j.Title,
			j.Seniority,
			strconv.FormatBool(j.IsActive),
			strconv.Itoa(j.ResumesCount),
			fmt.Sprintf("%d%%", j.Progress),
		})
	}
	table.Render()
	return nil
}

func statusColor(status string) string {
	switch status {
	case db.StatusCompleted:
		return color.GreenString(status)
	case db.StatusInvited, db.StatusInProgress:
		return color.YellowString(status)
	default:
		return status
	}
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(db.RoundScore(*score), 'f', 2, 64)
}
