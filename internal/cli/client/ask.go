package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AskRequest represents the question answering API request.
type AskRequest struct {
	Question   string  `json:"question"`
	TopK       int     `json:"top_k,omitempty"`
	MinScore   float32 `json:"min_score,omitempty"`
	DocumentID string  `json:"document_id,omitempty"`
}

// Citation represents a source reference in an answer.
type Citation struct {
	SourceID         int    `json:"source_id"`
	DocumentID       string `json:"document_id"`
	Source           string `json:"source"`
	Snippet          string `json:"snippet"`
	RelevancePercent int    `json:"relevance_percent"`
}

// AnswerResponse represents the question answering API response.
type AnswerResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Grounded  bool       `json:"grounded"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		topK       int
		documentID string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question over ingested documents",
		Long:  "Retrieves relevant chunks and generates a cited answer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, AskRequest{Question: args[0], TopK: topK, DocumentID: documentID}, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Maximum number of source chunks")
	cmd.Flags().StringVar(&documentID, "document", "", "Restrict retrieval to a single document")

	return cmd
}

func runAsk(cmd *cobra.Command, req AskRequest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/search/answer", req)
	if err != nil {
		return fmt.Errorf("failed to get answer: %w", err)
	}

	var answer AnswerResponse
	if err := json.Unmarshal(resp.Data, &answer); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Answer)
	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range answer.Citations {
			fmt.Printf("  [%d] %s (%d%% relevant)\n", c.SourceID, c.Source, c.RelevancePercent)
		}
	}

	return nil
}
