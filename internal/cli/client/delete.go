package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "delete [document_id]",
		Short: "Delete a document and its vectors",
		Args: func(cmd *cobra.Command, args []string) error {
			allFlag, _ := cmd.Flags().GetBool("all")
			if allFlag {
				if len(args) != 0 {
					return fmt.Errorf("cannot combine --all with a document ID")
				}
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("requires exactly 1 argument (document_id) or use --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return runDeleteAll(cmd)
			}
			return runDelete(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete every document")

	return cmd
}

func runDelete(cmd *cobra.Command, documentID string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Delete(fmt.Sprintf("/documents/%s", documentID)); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	fmt.Printf("Deleted document: %s\n", documentID)
	return nil
}

func runDeleteAll(cmd *cobra.Command) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Delete("/documents"); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	fmt.Println("Deleted all documents.")
	return nil
}
