package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatsResponse represents the stats API response.
type StatsResponse struct {
	DocumentCount  int64 `json:"document_count"`
	VectorCount    int64 `json:"vector_count"`
	Dimensions     int   `json:"dimensions"`
	EmbeddingCache struct {
		Entries int   `json:"entries"`
		Hits    int64 `json:"hits"`
		Misses  int64 `json:"misses"`
	} `json:"embedding_cache"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show service statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runStats(cmd, outputJSON)
		},
	}
}

func runStats(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/stats")
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	var stats StatsResponse
	if err := json.Unmarshal(resp.Data, &stats); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Documents: %d\n", stats.DocumentCount)
	fmt.Printf("Vectors: %d (%d dimensions)\n", stats.VectorCount, stats.Dimensions)
	fmt.Printf("Embedding cache: %d entries, %d hits, %d misses\n",
		stats.EmbeddingCache.Entries, stats.EmbeddingCache.Hits, stats.EmbeddingCache.Misses)

	return nil
}
