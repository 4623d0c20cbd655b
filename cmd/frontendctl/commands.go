package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"frontend/apiclient"

	"github.com/spf13/cobra"
)

const defaultGatewayURL = "http://127.0.0.1:3000"

func newRootCmd(out io.Writer) *cobra.Command {
	var gatewayURL string
	client := func() *apiclient.Client {
		return apiclient.New(gatewayURL)
	}

	root := &cobra.Command{
		Use:           "frontendctl",
		Short:         "Call the frontend gateway proxy API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultURL := os.Getenv("FRONTEND_URL")
	if defaultURL == "" {
		defaultURL = defaultGatewayURL
	}
	root.PersistentFlags().StringVar(&gatewayURL, "url", defaultURL, "gateway base URL (env FRONTEND_URL)")

	root.AddCommand(
		&cobra.Command{
			Use:   "solution <query>",
			Short: "Look up the solution for a query",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				result, err := client().GetSolution(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(out, result)
			},
		},
		newUploadCmd(out, client),
		newProcessCmd(out, client),
		newProcessBatchCmd(out, client),
		newListBlobsCmd(out, client),
	)
	return root
}

func newUploadCmd(out io.Writer, client func() *apiclient.Client) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document to blob storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			name := filepath.Base(args[0])
			if mimeType == "" {
				mimeType = mime.TypeByExtension(filepath.Ext(name))
			}
			result, err := client().UploadDocument(cmd.Context(), name, mimeType, f)
			if err != nil {
				return err
			}
			return printJSON(out, result)
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "declared content type (guessed from the extension when empty)")
	return cmd
}

type modelFlags struct {
	modelID        string
	embeddingModel string
}

func (m *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.modelID, "model-id", "", "document analysis model (default prebuilt-layout)")
	cmd.Flags().StringVar(&m.embeddingModel, "embedding-model", "", "embedding model (default text-embedding-3-small)")
}

func newProcessCmd(out io.Writer, client func() *apiclient.Client) *cobra.Command {
	var models modelFlags
	cmd := &cobra.Command{
		Use:   "process <blob-name>",
		Short: "Generate and store embeddings for one blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client().ProcessDocument(cmd.Context(), args[0], models.modelID, models.embeddingModel)
			if err != nil {
				return err
			}
			return printJSON(out, result)
		},
	}
	models.register(cmd)
	return cmd
}

func newProcessBatchCmd(out io.Writer, client func() *apiclient.Client) *cobra.Command {
	var models modelFlags
	cmd := &cobra.Command{
		Use:   "process-batch <blob-name>...",
		Short: "Generate and store embeddings for several blobs in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client().ProcessBatchDocuments(cmd.Context(), args, models.modelID, models.embeddingModel)
			if err != nil {
				return err
			}
			return printJSON(out, result)
		},
	}
	models.register(cmd)
	return cmd
}

func newListBlobsCmd(out io.Writer, client func() *apiclient.Client) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "list-blobs",
		Short: "List stored blobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client().ListBlobs(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			return printJSON(out, result)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list blobs whose name starts with this")
	return cmd
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
