package main

import (
	"support-chat-be/internal/config"
	"support-chat-be/internal/model"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/pkg/database"
	"support-chat-be/pkg/dataloader"
	"support-chat-be/pkg/dataloader/csvloader"
	"support-chat-be/pkg/dataloader/loaderwithmetrics"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type LoadFlags struct {
	DataDir  string
	ErrorDir string
	Reset    bool
	Verbose  bool
}

// catalogModels are the tables filled from CSV, one file per table.
func catalogModels() []interface{} {
	return []interface{}{
		&model.User{},
		&model.DistributionCenter{},
		&model.Product{},
		&model.Order{},
		&model.InventoryItem{},
		&model.OrderItem{},
	}
}

func NewLoadCommand() *cobra.Command {
	f := &LoadFlags{}

	cmd := &cobra.Command{
		Use:   "loader",
		Short: "Load the e-commerce CSV dataset into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(f)
		},
	}

	cmd.Flags().StringVar(&f.DataDir, "data-dir", "data", "directory holding <table>.csv files")
	cmd.Flags().StringVar(&f.ErrorDir, "error-dir", ".", "directory receiving errors_<table>.csv files")
	cmd.Flags().BoolVar(&f.Reset, "reset", false, "drop and recreate every table before loading")
	cmd.Flags().BoolVar(&f.Verbose, "verbose", false, "log every SQL statement")

	return cmd
}

func runLoad(f *LoadFlags) error {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = sysLogger.Sync() }()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{Verbose: f.Verbose})
	if err != nil {
		return errors.WithMessage(err, "could not get db client")
	}
	defer func() { _ = database.Close(db) }()

	if f.Reset {
		color.Yellow("Dropping and recreating all tables...")
		err = database.Reset(db, model.All()...)
	} else {
		err = database.Migrate(db, model.All()...)
	}
	if err != nil {
		return errors.WithMessage(err, "could not migrate db")
	}

	var loaders []dataloader.DataLoader
	var fileLoaders []*csvloader.CSVLoader
	for _, m := range catalogModels() {
		l, err := csvloader.New(db, m, f.DataDir, f.ErrorDir, sysLogger)
		if err != nil {
			return err
		}
		loaders = append(loaders, l)
		fileLoaders = append(fileLoaders, l)
	}

	all := loaderwithmetrics.New(loaders, sysLogger)
	all.Load()

	printSummary(fileLoaders)

	if errs := all.Errors(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("  %v", e)
		}
		return errors.Errorf("%d loader errors", len(errs))
	}
	color.Green("Done loading all data.")
	return nil
}

func printSummary(loaders []*csvloader.CSVLoader) {
	for _, l := range loaders {
		res := l.Result()
		switch {
		case res.Skipped:
			color.Yellow("%-22s file not found: %s", res.Table, res.File)
		case res.Failed > 0:
			color.Yellow("%-22s %d/%d rows inserted, %d failed (see %s)", res.Table, res.Inserted, res.Rows, res.Failed, res.ErrorFile)
		case len(l.Errors()) > 0:
			color.Red("%-22s not loaded", res.Table)
		default:
			color.Green("%-22s %d rows inserted", res.Table, res.Inserted)
		}
	}
}
