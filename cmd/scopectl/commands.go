// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/scope-dashboard/internal/cloud"
	"github.com/jaycherian/scope-dashboard/internal/core/model"
	"github.com/jaycherian/scope-dashboard/internal/core/services"
	"github.com/spf13/cobra"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "videos [EMAIL]",
		Short: "List the videos assigned to an identity, or every identity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			directory := services.NewVideoDirectory(cfg.Storage.UserVideoMapFile)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				videos, err := directory.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(videos) == 0 {
					fmt.Fprintf(out, "No videos assigned to %s\n", args[0])
					return nil
				}
				rows := make([][]string, 0, len(videos))
				for i, v := range videos {
					rows = append(rows, []string{strconv.Itoa(i + 1), v})
				}
				fmt.Fprintln(out, renderTable([]string{"#", "Video"}, rows, []columnAlignment{alignRight, alignLeft}))
				return nil
			}

			identities, err := directory.Identities(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(identities))
			for _, identity := range identities {
				videos, err := directory.Resolve(cmd.Context(), identity)
				if err != nil {
					return err
				}
				rows = append(rows, []string{identity, strconv.Itoa(len(videos))})
			}
			fmt.Fprintln(out, renderTable([]string{"Email", "Videos"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary VIDEO",
		Short: "Print the text report of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			text, err := services.NewReportStore(cfg.Storage.ReportFile).ReadSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report VIDEO",
		Short: "Show the multimodal analysis views of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			record, err := services.NewReportStore(cfg.Storage.ReportFile).ReadFull(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			modalities := model.BuildModalities(args[0], record)
			rows := make([][]string, 0, len(modalities))
			for _, m := range modalities {
				source := m.ReportKey
				if source == "" {
					source = "default"
				}
				rows = append(rows, []string{m.Title, m.Media, source, m.Report})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Modality", "Media", "Source", "Report"}, rows, nil))
			return nil
		},
	}
}

// readMirror reads the BigQuery copy of the output log, filtered by email
// when it is set.
func readMirror(ctx context.Context, cfg *cloud.Config, email string) ([]*model.OutputLogRow, error) {
	if !cfg.UsesBigQuery() {
		return nil, errors.New("no BigQuery mirror is configured for this runtime")
	}
	client, err := bigquery.NewClient(ctx, cfg.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	mirror := &services.BigQueryOutputLog{
		BigqueryClient: client,
		DatasetName:    cfg.BigQueryDataSource.DatasetName,
		Table:          cfg.BigQueryDataSource.OutputLogTable,
	}
	if email != "" {
		return mirror.ReadByEmail(ctx, email)
	}
	return mirror.ReadAll(ctx)
}

func newLogCommand(ctx *commandContext) *cobra.Command {
	var email string
	var fromMirror bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List the saved results of the output log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var entries []*model.OutputLogRow
			if fromMirror {
				entries, err = readMirror(cmd.Context(), cfg, email)
			} else {
				entries, err = services.NewCSVOutputLog(cfg.Storage.OutputLogFile).ReadAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				if email != "" && e.Email != email {
					continue
				}
				rows = append(rows, []string{e.Email, e.OriginalVideo, e.AnalyzedVideo, model.ReportHighlight(e.Report)})
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No saved results")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"Email", "Original", "Analyzed", "Report"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Only show results saved by this identity")
	cmd.Flags().BoolVar(&fromMirror, "mirror", false, "Read the BigQuery mirror instead of the CSV file")
	return cmd
}
