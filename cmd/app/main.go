package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/devarchitect/internal"
	"github.com/starford/devarchitect/internal/architectservice"
	"github.com/starford/devarchitect/internal/console"
	"github.com/starford/devarchitect/internal/prefs"
	pkgconfig "github.com/starford/devarchitect/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, version, internal.WithConfig(cfg))
}

// withComponents builds the application graph for one-shot commands. Logs go
// to stderr so command output stays readable.
func withComponents(fn func(ctx context.Context, cmd *cli.Command, c *internal.Components, out *console.Printer) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		c, err := internal.Build(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(ctx, cmd, c, console.New(os.Stdout))
	}
}

func generate(ctx context.Context, cmd *cli.Command, c *internal.Components, out *console.Printer) error {
	prompt := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(prompt) == "" {
		return errors.New("usage: generate <application idea>")
	}
	out.Info("Architecting %q...", prompt)
	doc, err := c.Service.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	out.Document(prompt, *doc)
	out.Success("Saved to history")
	return nil
}

func historyList(ctx context.Context, _ *cli.Command, c *internal.Components, out *console.Printer) error {
	out.History(c.Service.Summaries(ctx))
	return nil
}

func historyShow(ctx context.Context, cmd *cli.Command, c *internal.Components, out *console.Printer) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("usage: history show <id>")
	}
	e, err := c.Service.Entry(ctx, id)
	if err != nil {
		return fmt.Errorf("history entry %q: %w", id, err)
	}
	out.Document(e.Prompt, e.Data)
	return nil
}

func historyClear(ctx context.Context, cmd *cli.Command, c *internal.Components, out *console.Printer) error {
	n := len(c.Service.Summaries(ctx))
	if n == 0 {
		out.Info("History is already empty")
		return nil
	}
	if !cmd.Bool("yes") && !out.Confirm(os.Stdin, fmt.Sprintf("Delete %d saved architectures?", n)) {
		out.Warn("Aborted")
		return nil
	}
	if err := c.Service.ClearHistory(ctx); err != nil {
		return err
	}
	out.Success("Cleared %d entries", n)
	return nil
}

func exportDoc(ctx context.Context, cmd *cli.Command, c *internal.Components, out *console.Printer) error {
	id := cmd.String("id")
	if id == "" {
		entries := c.Service.Summaries(ctx)
		if len(entries) == 0 {
			return errors.New("nothing to export: history is empty")
		}
		id = entries[0].ID
	}

	var (
		art architectservice.Artifact
		err error
	)
	if cmd.Bool("front-matter") {
		art, err = c.Service.ExportEntry(ctx, id)
	} else if _, err = c.Service.LoadEntry(ctx, id); err == nil {
		art, err = c.Service.Export()
	}
	if err != nil {
		return fmt.Errorf("export %q: %w", id, err)
	}

	dest := cmd.String("out")
	if dest == "-" {
		_, err := fmt.Fprint(os.Stdout, art.Content)
		return err
	}
	if dest == "" {
		dest = art.FileName
	}
	if err := os.WriteFile(dest, []byte(art.Content), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	out.Success("Exported to %s", dest)
	return nil
}

func themeGet(ctx context.Context, _ *cli.Command, c *internal.Components, out *console.Printer) error {
	out.Info("%s", c.Service.Theme(ctx))
	return nil
}

func themeSet(ctx context.Context, cmd *cli.Command, c *internal.Components, out *console.Printer) error {
	t := prefs.Theme(cmd.Args().First())
	if err := c.Service.SetTheme(ctx, t); err != nil {
		return fmt.Errorf("theme %q: %w (choose one of %v)", t, err, prefs.Themes)
	}
	out.Success("Theme set to %s", t)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "devarchitect",
		Usage:   "Turn an application idea into a tech stack, folder structure, and roadmap",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API and SSE server",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:      "generate",
				Usage:     "Generate an architecture document and save it to history",
				ArgsUsage: "<application idea>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print the document as JSON"},
				},
				Action: withComponents(generate),
			},
			{
				Name:  "history",
				Usage: "Inspect saved generations",
				Commands: []*cli.Command{
					{Name: "list", Usage: "List saved generations, newest first", Action: withComponents(historyList)},
					{Name: "show", Usage: "Print one saved generation", ArgsUsage: "<id>", Action: withComponents(historyShow)},
					{
						Name:  "clear",
						Usage: "Delete every saved generation",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
						},
						Action: withComponents(historyClear),
					},
				},
			},
			{
				Name:  "export",
				Usage: "Write a saved generation as a Markdown document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "History entry id (default: newest)"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path, or - for stdout (default: derived from the prompt)"},
					&cli.BoolFlag{Name: "front-matter", Usage: "Prefix the document with YAML front matter"},
				},
				Action: withComponents(exportDoc),
			},
			{
				Name:  "theme",
				Usage: "Show or change the theme preference",
				Commands: []*cli.Command{
					{Name: "get", Usage: "Print the current theme", Action: withComponents(themeGet)},
					{Name: "set", Usage: "Store a theme", ArgsUsage: "<midnight|cyberpunk|light>", Action: withComponents(themeSet)},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		console.New(os.Stderr).Error("%v", err)
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
