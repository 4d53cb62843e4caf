package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// SummarizeRequest represents the summarization API request.
type SummarizeRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Length     string `json:"length,omitempty"`
}

// Summary represents a generated summary.
type Summary struct {
	Text      string `json:"summary"`
	Length    string `json:"length"`
	Method    string `json:"method"`
	NumChunks int    `json:"num_chunks"`
}

// SummarizeCmd creates the summarize command.
func SummarizeCmd() *cobra.Command {
	var (
		documentID string
		file       string
		length     string
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a document or local file",
		Long: `Summarize an ingested document by ID or a local text file.

Examples:
  # Summarize an ingested document
  docsense summarize --document <document_id>

  # Summarize a local file without ingesting it
  docsense summarize --file notes.txt --length brief`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSummarize(cmd, documentID, file, length, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&documentID, "document", "d", "", "ID of an ingested document")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Local file to summarize")
	cmd.Flags().StringVarP(&length, "length", "l", "standard", "Summary length: brief, standard, or detailed")

	return cmd
}

func runSummarize(cmd *cobra.Command, documentID, file, length string, outputJSON bool) error {
	if documentID == "" && file == "" {
		return fmt.Errorf("either --document or --file is required")
	}
	if documentID != "" && file != "" {
		return fmt.Errorf("--document and --file are mutually exclusive")
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	req := SummarizeRequest{DocumentID: documentID, Length: length}
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		req.Text = string(content)
	}

	resp, err := api.Post("/summarize", req)
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}

	var summary Summary
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(summary.Text)
	fmt.Printf("\n(%s summary, %s, %d sections)\n", summary.Length, summary.Method, summary.NumChunks)

	return nil
}
