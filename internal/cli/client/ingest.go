package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Document represents a document returned by the API.
type Document struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Format     string `json:"format"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count"`
	SizeBytes  int64  `json:"size_bytes"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// IngestRequest represents the document ingestion API request.
type IngestRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a document",
		Long:  "Reads a local file and ingests it into the document store for search and summarization.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(cmd, args[0], name, outputJSON)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Override the filename sent to the server")

	return cmd
}

func runIngest(cmd *cobra.Command, path, name string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if name == "" {
		name = filepath.Base(path)
	}

	resp, err := api.Post("/documents", IngestRequest{
		Filename: name,
		Content:  string(content),
	})
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Ingested document: %s\n", doc.ID)
		fmt.Printf("Filename: %s\n", doc.Filename)
		fmt.Printf("Status: %s\n", doc.Status)
		fmt.Printf("Chunks: %d\n", doc.ChunkCount)
	}

	return nil
}
