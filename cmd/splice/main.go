package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/dgallion1/splice/internal/config"
)

// Context is passed to every command's Run method.
type Context struct {
	Config    string
	LogLevel  string
	LogFormat string
	Stdout    io.Writer
	Stderr    io.Writer
}

// Logger returns the diagnostics logger selected by --log-level and
// --log-format. It writes to Stderr so Stdout stays reserved for output.
func (c *Context) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(c.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(c.Stderr, opts))
}

// CLI represents the command-line interface
type CLI struct {
	Config    string `help:"Project file path" default:"splice.yaml"`
	LogLevel  string `help:"Log level" enum:"debug,info,warn,error" default:"warn"`
	LogFormat string `help:"Log format" enum:"text,json" default:"text"`

	Build   BuildCmd   `cmd:"" help:"Resolve includes and write the generated source"`
	Lookup  LookupCmd  `cmd:"" help:"Map generated line numbers back to their origin"`
	Deps    DepsCmd    `cmd:"" help:"List the files a build reads"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "splice v0.1.0")
	return nil
}

func main() {
	if err := config.LoadDotenv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("splice"),
		kong.Description("Expand #include directives and keep a line origin index."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	appCtx := &Context{
		Config:    cli.Config,
		LogLevel:  cli.LogLevel,
		LogFormat: cli.LogFormat,
		Stdout:    stdout,
		Stderr:    stderr,
	}
	if err := kctx.Run(appCtx); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}
