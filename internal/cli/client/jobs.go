package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SubmitJobRequest represents the batch summarization API request.
type SubmitJobRequest struct {
	DocumentIDs []string `json:"document_ids"`
	Length      string   `json:"length,omitempty"`
}

// JobItem represents a single document's result within a batch job.
type JobItem struct {
	DocumentID string   `json:"document_id"`
	Status     string   `json:"status"`
	Summary    *Summary `json:"summary,omitempty"`
	Error      string   `json:"error,omitempty"`
	Attempts   int      `json:"attempts"`
}

// Job represents a batch summarization job.
type Job struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	Length     string    `json:"length"`
	Items      []JobItem `json:"items"`
	CreatedAt  string    `json:"created_at"`
	StartedAt  string    `json:"started_at,omitempty"`
	FinishedAt string    `json:"finished_at,omitempty"`
}

// JobsCmd creates the jobs command group.
func JobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage batch summarization jobs",
	}

	cmd.AddCommand(jobsSubmitCmd())
	cmd.AddCommand(jobsGetCmd())
	cmd.AddCommand(jobsCancelCmd())

	return cmd
}

func jobsSubmitCmd() *cobra.Command {
	var length string

	cmd := &cobra.Command{
		Use:   "submit <document_id>...",
		Short: "Submit a batch summarization job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runJobsSubmit(cmd, args, length, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&length, "length", "l", "standard", "Summary length: brief, standard, or detailed")

	return cmd
}

func jobsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <job_id>",
		Short: "Get a batch job by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runJobsGet(cmd, args[0], outputJSON)
		},
	}
}

func jobsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job_id>",
		Short: "Cancel a running batch job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runJobsCancel(cmd, args[0], outputJSON)
		},
	}
}

func runJobsSubmit(cmd *cobra.Command, documentIDs []string, length string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/jobs/summarize", SubmitJobRequest{DocumentIDs: documentIDs, Length: length})
	if err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(resp.Data, &job); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Submitted job: %s (%d documents)\n", job.ID, len(job.Items))
		fmt.Printf("Check progress with: docsense jobs get %s\n", job.ID)
	}

	return nil
}

func runJobsGet(cmd *cobra.Command, jobID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/jobs/%s", jobID))
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(resp.Data, &job); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printJob(job)
	return nil
}

func runJobsCancel(cmd *cobra.Command, jobID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post(fmt.Sprintf("/jobs/%s/cancel", jobID), nil)
	if err != nil {
		return fmt.Errorf("failed to cancel job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(resp.Data, &job); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Job %s is now %s\n", job.ID, job.State)
	}

	return nil
}

func printJob(job Job) {
	fmt.Printf("Job: %s\n", job.ID)
	fmt.Printf("State: %s\n", job.State)
	fmt.Printf("Length: %s\n", job.Length)

	var completed, failed, skipped, pending int
	for _, item := range job.Items {
		switch item.Status {
		case "completed":
			completed++
		case "failed":
			failed++
		case "skipped":
			skipped++
		default:
			pending++
		}
	}
	fmt.Printf("Items: %d total, %d completed, %d failed, %d skipped, %d pending\n",
		len(job.Items), completed, failed, skipped, pending)

	for _, item := range job.Items {
		line := fmt.Sprintf("  %s  %s", item.DocumentID, item.Status)
		if item.Error != "" {
			line += "  (" + item.Error + ")"
		}
		fmt.Println(line)
	}
}
