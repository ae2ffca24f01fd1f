package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/djenbridge/internal/app"
	"github.com/crimson-sun/djenbridge/internal/config"
	"github.com/crimson-sun/djenbridge/internal/model"
	"github.com/crimson-sun/djenbridge/internal/output"
	"github.com/crimson-sun/djenbridge/internal/output/file"
	"github.com/crimson-sun/djenbridge/internal/output/multi"
	"github.com/crimson-sun/djenbridge/internal/output/stdout"
	"github.com/crimson-sun/djenbridge/internal/output/webhook"
	"github.com/crimson-sun/djenbridge/internal/pipeline"
)

type queryFlags struct {
	names     []string
	oab       string
	from      string
	to        string
	court     string
	connector string
	pretty    bool
}

func queryCmd() *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Fetch notifications once and write them as JSON",
		Long: `Fetch notifications for one or more lawyers and write them to the
configured outputs (stdout, file, webhook). Repeating --name runs one query
per lawyer; records already written by an earlier query are skipped.

Examples:
  djenbridge query --name "Pedro Brandão" --from 2025-08-06 --to 2025-08-06
  djenbridge query --name "Alfredo Ramos" --oab 98765/SP --court TJSP --pretty
  djenbridge query --connector static --name Pedro --from 2025-08-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, f)
		},
	}
	cmd.Flags().StringArrayVarP(&f.names, "name", "n", nil, "lawyer name (repeatable)")
	cmd.Flags().StringVar(&f.oab, "oab", "", "OAB registration, e.g. 123456/MG")
	cmd.Flags().StringVar(&f.from, "from", "", "start date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.to, "to", "", "end date YYYY-MM-DD (default --from)")
	cmd.Flags().StringVar(&f.court, "court", "", "court code filter, e.g. TJMG")
	cmd.Flags().StringVar(&f.connector, "connector", "", "override DJEN_CONNECTOR (djen, static)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "print one indented JSON array instead of NDJSON")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runQuery(cmd *cobra.Command, f queryFlags) error {
	cfg, err := loadConfig(true, func(c *config.Config) {
		if f.connector != "" {
			c.Connector.Provider = f.connector
		}
		if f.pretty {
			c.Output.Pretty = true
		}
	})
	if err != nil {
		return err
	}

	a, err := app.Build(cfg)
	if err != nil {
		return err
	}
	out, err := buildOutput(cfg)
	if err != nil {
		return err
	}
	p := pipeline.New(a.Adapter, out)
	defer func() {
		if cerr := p.Close(); cerr != nil {
			slog.Error("closing outputs", "error", cerr)
		}
	}()

	from := f.from
	if from == "" {
		from = time.Now().In(cfg.Cache.Location()).Format(model.DateLayout)
	}
	to := f.to
	if to == "" {
		to = from
	}
	queries := make([]model.Query, len(f.names))
	for i, name := range f.names {
		queries[i] = model.Query{
			LawyerName: name,
			OAB:        f.oab,
			DateStart:  from,
			DateEnd:    to,
			Court:      f.court,
			ClientKey:  "cli",
		}
	}

	reports, err := p.Run(cmd.Context(), queries)
	var total, tokens int
	for _, r := range reports {
		total += r.Records
		tokens += r.Tokens
	}
	slog.Info("query run finished", "queries", len(queries), "records", total, "est_tokens", tokens)
	return err
}

// buildOutput assembles the destinations named by cfg.Output.
func buildOutput(cfg config.Config) (output.Output, error) {
	v := cfg.Engine.ParsedVerbosity()
	var outs []output.Output
	if cfg.Output.Format == "stdout" || cfg.Output.Format == "both" {
		outs = append(outs, stdout.New(v, cfg.Output.Pretty))
	}
	if cfg.Output.Format == "file" || cfg.Output.Format == "both" {
		fo, err := file.New(cfg.Output.File, v,
			file.WithMaxSize(int64(cfg.Output.FileMaxMB)<<20),
			file.WithMaxBackups(cfg.Output.FileBackups))
		if err != nil {
			return nil, err
		}
		outs = append(outs, fo)
	}
	if cfg.Output.WebhookURL != "" {
		outs = append(outs, webhook.New(cfg.Output.WebhookURL))
	}
	if len(outs) == 0 {
		return nil, fmt.Errorf("no output configured")
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}
