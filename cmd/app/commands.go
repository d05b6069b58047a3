package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RateBot/internal/di"
	"RateBot/pkg/config"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and report workers (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

func renderCmd(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the report once and write the PNG locally",
		Long: `Fetch the current rates, render the table and write it to report.output_path
(or --output). Nothing is uploaded and no message is sent, so LINE and
Cloudinary credentials are not needed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadLocal(*configPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			if output != "" {
				cfg.Report.OutputPath = output
			}

			job, err := di.InitializeRenderJob(cfg)
			if err != nil {
				return fmt.Errorf("render initialization failed: %w", err)
			}
			defer func() {
				if cerr := job.Close(); cerr != nil {
					fmt.Printf("%s %v\n", color.New(color.FgYellow).Sprint("CLOSE"), cerr)
				}
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			start := time.Now()
			artifact, err := job.Builder.Build(ctx)
			if err != nil {
				fmt.Printf("%s %v\n", color.New(color.FgRed).Sprint("FAILED"), err)
				return err
			}
			path, err := job.Store.Save(ctx, artifact)
			if err != nil {
				fmt.Printf("%s %v\n", color.New(color.FgRed).Sprint("FAILED"), err)
				return err
			}

			b := artifact.Image.Bounds()
			fmt.Printf("%s %s\n", color.New(color.FgGreen).Sprint("WROTE"), path)
			fmt.Printf("  size:  %dx%d, %s\n", b.Dx(), b.Dy(), humanize.Bytes(uint64(len(artifact.PNG))))
			fmt.Printf("  hash:  %s\n", artifact.HashHex())
			fmt.Printf("  took:  %s\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default report.output_path)")
	return cmd
}
