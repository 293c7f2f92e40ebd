package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/erpacad/erpacad/internal/cli"
	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/curriculum"
	"github.com/erpacad/erpacad/internal/db"
	"github.com/erpacad/erpacad/internal/lesson"
	"github.com/erpacad/erpacad/internal/llm"
	"github.com/erpacad/erpacad/internal/logging"
	"github.com/erpacad/erpacad/internal/repository"
	"github.com/erpacad/erpacad/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	policy, err := config.LoadPolicy(cfg.Policy.Path)
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}
	dataset, err := curriculum.Load(cfg.Dataset.Path)
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	approvals := repository.NewSQLiteApprovalRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(logger)

	// Scripts fall back to the deterministic renderer when the LLM is off.
	var client llm.LLMClient
	if llmCfg := llm.FromConfig(cfg.LLM); llmCfg.Enabled {
		var llmObserver llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			llmObserver = llm.NewLogObserver(logger)
		}
		client = llm.NewOllamaClient(llmCfg, llmObserver)
		if !client.Available(ctx) {
			logger.Warn("llm_unreachable", "endpoint", llmCfg.Endpoint, "model", llmCfg.Model)
		}
	}
	scripts := lesson.NewScriptService(client, policy, logger)

	planning := service.NewPlanningService(dataset, policy, approvals, observer)
	app := &cli.App{
		Planning:   planning,
		Execution:  service.NewExecutionService(planning, scripts, approvals, logger, observer),
		Approvals:  service.NewApprovalService(approvals, uow, logger, observer),
		Assessment: service.NewAssessmentService(dataset, observer),
		Session:    service.NewSession(cfg.Operator.Name, cfg.Operator.Board),
	}

	// Forms and the teaching view need a terminal on both ends.
	app.IsInteractive = func() bool {
		return isTTY(os.Stdin.Fd()) && isTTY(os.Stdout.Fd())
	}

	logger.Debug("session_started", "session", app.Session.ID, "operator", app.Session.Operator, "board", app.Session.Board)
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// configPath picks --config out of the arguments before cobra runs, since
// the services cobra dispatches to are built from the config.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("erpacad", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

func isTTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
