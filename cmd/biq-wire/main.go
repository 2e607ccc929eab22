// Command biq-wire is a tool for working with BIQ wire documents.
//
// Usage:
//
//	biq-wire <command> [flags] [args]
//
// Commands:
//
//	validate   Decode a document and report problems
//	convert    Re-encode a document between JSON and CBOR
//	envelopes  List the envelope names accepted by validate and convert
//	limits     Print the device limit type table
//	schema     Print a schema generation, or list generations
//	changes    Print the keys added and removed between two generations
//	events     View a codec event file
//	stats      Show statistics about a codec event file
//	snapshot   Export or import a store snapshot
//	serve      Serve the HTTP API
//
// Examples:
//
//	# Check a device list reply
//	biq-wire validate -envelope DeviceList reply.json
//
//	# Convert a CBOR limits response to JSON
//	biq-wire convert -envelope DeviceLimitsResponse -from cbor -to json limits.cbor
//
//	# Convert a JSON-lines stream of observations to a CBOR sequence
//	biq-wire convert -seq -envelope Observation -o obs.cbor obs.jsonl
//
//	# Show failed decodes only
//	biq-wire events -failures server.blog
//
//	# Serve with a push broker
//	biq-wire serve -db biq.db -secret s3cret -broker mqtt://localhost:1883
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/qbiq/biq-go/cmd/biq-wire/commands"
)

const usage = `biq-wire - BIQ Wire Document Tool

Usage:
  biq-wire <command> [flags] [args]

Commands:
  validate   Decode a document and report problems
  convert    Re-encode a document between JSON and CBOR
  envelopes  List the envelope names accepted by validate and convert
  limits     Print the device limit type table
  schema     Print a schema generation, or list generations
  changes    Print the keys added and removed between two generations
  events     View a codec event file
  stats      Show statistics about a codec event file
  snapshot   Export or import a store snapshot
  serve      Serve the HTTP API

Use "biq-wire <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "validate":
		runValidate(args)
	case "convert":
		runConvert(args)
	case "envelopes":
		exitOnError(commands.RunEnvelopes(os.Stdout))
	case "limits":
		runLimits(args)
	case "schema":
		runSchema(args)
	case "changes":
		runChanges(args)
	case "events":
		runEvents(args)
	case "stats":
		runStats(args)
	case "snapshot":
		runSnapshot(args)
	case "serve":
		runServe(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet(name, synopsis, use string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "biq-wire %s - %s\n\nUsage:\n  biq-wire %s %s\n\nFlags:\n", name, synopsis, name, use)
		fs.PrintDefaults()
	}
	return fs
}

// requireArg returns the first positional argument or exits.
func requireArg(fs *flag.FlagSet, what string) string {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: %s required\n", what)
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runValidate(args []string) {
	fs := newFlagSet("validate", "Decode a document and report problems", "[flags] <file|->")
	envelope := fs.String("envelope", "", "Envelope type name (required)")
	format := fs.String("format", "json", "Input format (json, cbor)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireArg(fs, "document path")
	if *envelope == "" {
		fmt.Fprintln(os.Stderr, "Error: -envelope required")
		os.Exit(1)
	}
	exitOnError(commands.RunValidate(path, *envelope, *format, os.Stdout))
}

func runConvert(args []string) {
	fs := newFlagSet("convert", "Re-encode a document between JSON and CBOR", "[flags] <file|->")
	envelope := fs.String("envelope", "", "Envelope type name (required)")
	from := fs.String("from", "json", "Input format (json, cbor)")
	to := fs.String("to", "cbor", "Output format (json, cbor)")
	output := fs.String("o", "", "Output file (default: stdout)")
	seq := fs.Bool("seq", false, "Convert a stream of documents (CBOR sequence or JSON lines)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireArg(fs, "document path")
	if *envelope == "" {
		fmt.Fprintln(os.Stderr, "Error: -envelope required")
		os.Exit(1)
	}
	exitOnError(commands.RunConvert(path, commands.ConvertOptions{
		Envelope: *envelope,
		From:     *from,
		To:       *to,
		Output:   *output,
		Sequence: *seq,
	}))
}

func runLimits(args []string) {
	fs := newFlagSet("limits", "Print the device limit type table", "[flags]")
	format := fs.String("format", "table", "Output format (table, json)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	exitOnError(commands.RunLimits(*format, os.Stdout))
}

func runSchema(args []string) {
	fs := newFlagSet("schema", "Print a schema generation, or list generations", "[flags]")
	gen := fs.Int("gen", 0, "Generation to print (default: list generations)")
	format := fs.String("format", "text", "Output format (text, yaml)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	exitOnError(commands.RunSchema(*gen, *format, os.Stdout))
}

func runChanges(args []string) {
	fs := newFlagSet("changes", "Print the keys added and removed between two generations", "-from N -to M")
	from := fs.Int("from", 1, "Older generation")
	to := fs.Int("to", 3, "Newer generation")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	exitOnError(commands.RunChanges(*from, *to, os.Stdout))
}

func runEvents(args []string) {
	fs := newFlagSet("events", "View a codec event file", "[flags] <file.blog>")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	envelope := fs.String("envelope", "", "Filter by envelope type name")
	format := fs.String("format", "", "Filter by wire format (json, cbor)")
	failures := fs.Bool("failures", false, "Show failed operations only")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requireArg(fs, "log file path")
	exitOnError(commands.RunEvents(path, commands.EventOptions{
		Direction:    *direction,
		Envelope:     *envelope,
		Format:       *format,
		FailuresOnly: *failures,
		TimeStart:    *timeStart,
		TimeEnd:      *timeEnd,
	}, os.Stdout))
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about a codec event file", "<file.blog>")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	exitOnError(commands.RunStats(requireArg(fs, "log file path"), os.Stdout))
}

func runSnapshot(args []string) {
	fs := newFlagSet("snapshot", "Export or import a store snapshot", "[flags] export|import <snapshot.json>")
	db := fs.String("db", "./biq.db", "SQLite database path")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: action and snapshot path required")
		fs.Usage()
		os.Exit(1)
	}

	switch action, path := fs.Arg(0), fs.Arg(1); action {
	case "export":
		exitOnError(commands.RunSnapshotExport(*db, path, os.Stdout))
	case "import":
		exitOnError(commands.RunSnapshotImport(*db, path, os.Stdout))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown action %q (valid: export, import)\n", action)
		os.Exit(1)
	}
}

func runServe(args []string) {
	fs := newFlagSet("serve", "Serve the HTTP API", "[flags]")
	addr := fs.String("addr", ":8080", "Listen address")
	db := fs.String("db", "./biq.db", "SQLite database path")
	secret := fs.String("secret", os.Getenv("BIQ_TOKEN_SECRET"), "Token signing secret (default: $BIQ_TOKEN_SECRET)")
	broker := fs.String("broker", "", "MQTT broker URL for push notifications (optional)")
	eventLog := fs.String("event-log", "", "Codec event file (optional)")
	eventLogMax := fs.Int64("event-log-max", 64<<20, "Rotate the event log at this many bytes (0: never)")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := commands.RunServe(ctx, commands.ServeOptions{
		Addr:        *addr,
		DBPath:      *db,
		Secret:      *secret,
		Broker:      *broker,
		EventLog:    *eventLog,
		EventLogMax: *eventLogMax,
		LogLevel:    *logLevel,
	})
	exitOnError(err)
}
