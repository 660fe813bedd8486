package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mca-workers/internal/extraction"
	edf "mca-workers/internal/workers/document/extract-document-fields"
)

func newExtractCmd() *cobra.Command {
	var (
		file     string
		maxPages int
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract applicant fields from a PDF or text file",
		Long:  "Prints the extracted fields as JSON. An unreadable PDF still exits 0 with an advisory on stderr.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			extractor := extraction.NewExtractor()
			var fields extraction.Fields
			if strings.EqualFold(filepath.Ext(file), ".pdf") {
				fields, err = extractor.ExtractDocument(context.Background(), extraction.NewPDFDecoder(maxPages), data)
				if errors.Is(err, extraction.ErrExtractionFailed) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s (%v)\n", edf.ManualEntryMessage, err)
					err = nil
				}
				if err != nil {
					return err
				}
			} else {
				fields = extractor.Extract(string(data))
			}
			return writeJSON(cmd.OutOrStdout(), fields)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a PDF or plain text application (required)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 50, "Pages to read from a PDF")
	if err := cmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}
	return cmd
}
