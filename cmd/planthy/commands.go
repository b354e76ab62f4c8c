package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bububa/planthy/app"
	"github.com/bububa/planthy/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagnose API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd.Context())
		defer stop()
		svc, err := loadServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()
		srv := server.New(svc.Shell,
			server.WithLogger(logger.Named("http")),
			server.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
		)
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose a plant image and answer a question about it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath, _ := cmd.Flags().GetString("image")
		query, _ := cmd.Flags().GetString("query")
		raw, _ := cmd.Flags().GetBool("raw")

		ctx, stop := commandContext(cmd.Context())
		defer stop()
		f, err := os.Open(imagePath)
		if err != nil {
			return err
		}
		defer f.Close()
		svc, err := loadServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		diag, err := svc.Shell.Diagnose(ctx, f, query)
		if err != nil {
			var failure *app.Failure
			if errors.As(err, &failure) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s)\n", failure.Message, failure.Category)
			}
			return err
		}
		out, err := renderAnswer(diag.Answer, raw)
		if err != nil {
			logger.Warn("render markdown failed", zap.Error(err))
			out = diag.Answer
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract the structured health report of a plant image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath, _ := cmd.Flags().GetString("image")
		ctx, stop := commandContext(cmd.Context())
		defer stop()
		svc, err := loadServices(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()
		report, err := svc.Extractor.Analyze(ctx, imagePath)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the web for plant care information",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd.Context())
		defer stop()
		searcher, err := app.NewSearcher(cfg.Search, logger)
		if err != nil {
			return err
		}
		digest, err := searcher.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if digest == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "no results")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), digest)
		return nil
	},
}

func renderAnswer(answer string, raw bool) (string, error) {
	if raw {
		return answer, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(answer)
}
