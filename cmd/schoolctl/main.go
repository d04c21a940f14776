// schoolctl is the terminal front-end for the school records database. It
// runs one command per invocation against the same SQLite file the HTTP
// server uses.
//
//	schoolctl -config config/local.yaml add student -id S1 -name Ann -age 20 -email ann@x.com
//	schoolctl -db storage/school.db list courses
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aanand-mishra/school-records/internal/cli"
	"github.com/aanand-mishra/school-records/internal/config"
	"github.com/aanand-mishra/school-records/internal/logger"
	"github.com/aanand-mishra/school-records/internal/service"
	"github.com/aanand-mishra/school-records/internal/storage/sqlite"
)

func main() {
	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFailure)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitUsage, Message: err.Error()}
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Env, opts.LogLevel, "pretty")

	store, err := sqlite.New(cfg)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitFailure, Message: "cannot open database: " + err.Error()}
	}
	defer store.Close()

	svc := service.New(store, log)
	return cli.Execute(context.Background(), svc, outW, opts.Command, opts.Args)
}

// loadConfig reads the config file named by -config or CONFIG_PATH, if
// any. -db wins over storage_path; with -db alone no file is needed.
func loadConfig(opts *cli.Options) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if opts.DBPath != "" {
		os.Setenv("STORAGE_PATH", opts.DBPath)
	}

	return config.Load(path)
}
