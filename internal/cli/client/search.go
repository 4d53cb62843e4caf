package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SearchRequest represents the search API request.
type SearchRequest struct {
	Query      string  `json:"query"`
	TopK       int     `json:"top_k,omitempty"`
	MinScore   float32 `json:"min_score,omitempty"`
	DocumentID string  `json:"document_id,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// SearchResult represents a ranked chunk in a search response.
type SearchResult struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	Source        string  `json:"source"`
	SequenceIndex int     `json:"sequence_index"`
	Content       string  `json:"content"`
	Score         float32 `json:"score"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	SearchTimeMS int64          `json:"search_time_ms"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		topK       int
		minScore   float32
		documentID string
		source     string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search document chunks",
		Long:  "Searches ingested documents using semantic similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			req := SearchRequest{
				Query:      args[0],
				TopK:       topK,
				MinScore:   minScore,
				DocumentID: documentID,
				Source:     source,
			}
			return runSearch(cmd, req, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Maximum number of results")
	cmd.Flags().Float32Var(&minScore, "min-score", 0, "Minimum similarity score (0 uses the server default)")
	cmd.Flags().StringVar(&documentID, "document", "", "Restrict search to a single document")
	cmd.Flags().StringVar(&source, "source", "", "Restrict search to a source filename")

	return cmd
}

func runSearch(cmd *cobra.Command, req SearchRequest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/search", req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results in %dms:\n\n", len(searchResp.Results), searchResp.SearchTimeMS)
	for i, result := range searchResp.Results {
		fmt.Printf("%d. %s (%.2f)\n", i+1, result.Source, result.Score)
		content := strings.TrimSpace(result.Content)
		if len(content) > 160 {
			content = content[:157] + "..."
		}
		fmt.Printf("   %s\n", content)
		fmt.Printf("   Chunk: %s\n", result.ChunkID)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
