// Package cli is the terminal front-end. It parses the command line, runs
// one operation against the service layer, prints the result as a table,
// and maps failures to exit codes.
package cli
