package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mca-workers/internal/common/logger"
	"mca-workers/internal/models"
	"mca-workers/internal/qualification"
	rlm "mca-workers/internal/workers/lender/rank-lender-matches"
)

func newQualifyCmd() *cobra.Command {
	var (
		applicationPath string
		lendersPath     string
		ranked          bool
	)
	cmd := &cobra.Command{
		Use:   "qualify",
		Short: "Score lenders against an applicant profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var applicant models.ApplicantProfile
			if err := readJSON(applicationPath, &applicant); err != nil {
				return err
			}
			var lenders []models.Lender
			if err := readJSON(lendersPath, &lenders); err != nil {
				return err
			}

			matches := qualification.Qualify(lenders, applicant)
			if !ranked {
				return writeJSON(cmd.OutOrStdout(), matches)
			}

			ranker := rlm.NewHandler(&rlm.Config{MaxItems: len(matches), KeyFeatures: 4}, logger.NewNoOpLogger())
			out, err := ranker.Execute(context.Background(), &rlm.Input{Matches: matches})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&applicationPath, "application", "a", "", "Path to applicant profile JSON (required)")
	cmd.Flags().StringVarP(&lendersPath, "lenders", "l", "", "Path to lender list JSON (required)")
	cmd.Flags().BoolVar(&ranked, "ranked", false, "Order qualified lenders first and summarise features")
	for _, name := range []string{"application", "lenders"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	return cmd
}
