package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v3"

	"github.com/noah-isme/gema-lab-grader/internal/config"
	"github.com/noah-isme/gema-lab-grader/internal/grading"
	"github.com/noah-isme/gema-lab-grader/internal/report"
	"github.com/noah-isme/gema-lab-grader/internal/submission"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:            "grader",
		Usage:           "grades the 3-2-More-CSS lab in a student repository",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "student repository `DIR` (default from GEMA_GRADER_ROOT)"},
			&cli.StringFlag{Name: "artifacts", Aliases: []string{"a"}, Usage: "write grade files to `DIR`"},
			&cli.StringFlag{Name: "deadline", Usage: "override the lab deadline (`RFC3339`)"},
			&cli.StringFlag{Name: "step-summary", Usage: "append the Markdown summary to `FILE`"},
			&cli.StringFlag{Name: "log-level", Usage: "zerolog `LEVEL`"},
		},
		Action: grade,
		Commands: []*cli.Command{
			{
				Name:   "outline",
				Usage:  "prints the lab tasks and marks",
				Action: outline,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "grader:", err)
		os.Exit(1)
	}
}

// settings merges flags over the environment configuration.
func settings(cmd *cli.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	if v := cmd.String("root"); v != "" {
		cfg.GraderRoot = v
	}
	if v := cmd.String("artifacts"); v != "" {
		cfg.ArtifactsDir = v
	}
	if v := cmd.String("step-summary"); v != "" {
		cfg.StepSummary = v
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := cmd.String("deadline"); v != "" {
		deadline, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return config.Config{}, zerolog.Nop(), fmt.Errorf("invalid deadline: %w", err)
		}
		cfg.Deadline = deadline
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	return cfg, logger, nil
}

func labFor(cfg config.Config) grading.Lab {
	lab := grading.MoreCSS()
	if !cfg.Deadline.IsZero() {
		lab.Deadline.At = cfg.Deadline
	}
	return lab
}

func grade(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := settings(cmd)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(cfg.GraderRoot)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	artifactsDir := cfg.ArtifactsDir
	if !filepath.IsAbs(artifactsDir) {
		artifactsDir = filepath.Join(root, artifactsDir)
	}

	lab := labFor(cfg)
	locator := submission.NewLocator(lab, cfg.ArtifactsDir)
	if cfg.MarkupName != "" {
		locator.MarkupName = cfg.MarkupName
	}
	if cfg.StylesheetName != "" {
		locator.StylesheetName = cfg.StylesheetName
	}
	markupFile, stylesheetFile := locator.Discover(os.DirFS(root))
	logger.Debug().
		Str("root", root).
		Str("markup", markupFile.Path).
		Str("stylesheet", stylesheetFile.Path).
		Msg("files discovered")

	clock := submission.GitClock{Dir: root, Logger: logger}
	submittedAt, source := clock.SubmittedAt(ctx)
	result := lab.Grade(markupFile, stylesheetFile, lab.Deadline.Assess(submittedAt, source))

	writer := report.Writer{ArtifactsDir: artifactsDir, StepSummary: cfg.StepSummary, Logger: logger}
	artifacts, err := writer.Write(result, lab)

	fmt.Println(report.ConsoleLine(result))
	if artifacts.Feedback != "" {
		logger.Info().Str("feedback", artifacts.Feedback).Str("csv", artifacts.CSV).Msg("artifacts written")
	}
	return err
}

func outline(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := settings(cmd)
	if err != nil {
		return err
	}

	lab := labFor(cfg)
	fmt.Printf("%s (deadline %s)\n", lab.Name, lab.Deadline.At.Format(time.RFC3339))
	for _, task := range lab.Tasks() {
		fmt.Printf("  %-6s %5s  %s\n", task.ID, report.Number(task.Marks), task.Name)
	}
	fmt.Printf("  %-6s %5s  Submission timing (%s late)\n", "timing", report.Number(lab.Deadline.FullMarks), report.Number(lab.Deadline.LateMarks))
	fmt.Printf("  %-6s %5s\n", "total", report.Number(lab.MaxPossible()))
	return nil
}
