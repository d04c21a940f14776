package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/aanand-mishra/school-records/internal/types"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes. Usage mistakes and rejected input share code 2.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// Options are the global flags plus the command line that follows them.
type Options struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	Command    string
	Args       []string
}

const usage = `
schoolctl - manage the school records database from the terminal.

Usage:
  schoolctl [options] <command> [arguments]

Commands:
  list       <students|instructors|courses|registrations>
  search     <students|instructors|courses|registrations> [-q text] [-id text] [-name text] [-age n] [-instructor text]
  show       <student|instructor|course> <id>
  add        student|instructor -id ID -name NAME -age AGE -email EMAIL
  add        course -id ID -name NAME [-instructor ID]
  update     student|instructor <id> -name NAME -age AGE -email EMAIL
  update     course <id> -name NAME [-instructor ID]
  delete     <student|instructor|course> <id>
  assign     <course> [instructor]        (no instructor unassigns)
  register   <student> <course>
  unregister <student> <course>
  options                                 dropdown lists and revision
  records                                 every student, instructor and course
  export     <file>                       CSV, ".csv" added if no extension
  backup     <file>                       database copy, ".db" added if no extension
  clear      -yes                         drop every record

A student or instructor <id> may also be given as the email address.

Options:
`

// Parse processes the global flags. It returns the parsed Options, a
// boolean indicating if the program should exit cleanly (help was
// printed), or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("schoolctl", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration YAML file (or CONFIG_PATH).")
	dbFlag := flagSet.String("db", "", "Path to the SQLite database; overrides storage_path.")
	logLevelFlag := flagSet.String("log-level", "warn", "Logging level written to stderr: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &Options{
		ConfigPath: *configFlag,
		DBPath:     *dbFlag,
		LogLevel:   logLevel,
		Command:    flagSet.Arg(0),
		Args:       flagSet.Args()[1:],
	}, false, nil
}

// usageError reports a malformed command line.
func usageError(format string, a ...any) error {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, a...)}
}

// exitError turns an operation error into an ExitError carrying the exit
// code for its kind.
func exitError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	code := ExitFailure
	if types.KindOf(err) == types.KindInvalidInput {
		code = ExitUsage
	}
	return &ExitError{Code: code, Message: "error: " + err.Error()}
}
