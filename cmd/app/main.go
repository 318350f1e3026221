package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/bidinote/internal"
	"github.com/starford/bidinote/internal/graph"
	pkgconfig "github.com/starford/bidinote/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	)
}

// openEngine opens the index for one-shot commands. Logs are discarded so
// only the printed result reaches the terminal.
func openEngine(ctx context.Context, cmd *cli.Command) (*internal.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine, err := internal.OpenEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	engine.Sync(ctx, logger)
	return engine, nil
}

func query(ctx context.Context, cmd *cli.Command) error {
	expr := cmd.Args().First()
	engine, err := openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.Service.Query(ctx, expr)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func expand(ctx context.Context, cmd *cli.Command) error {
	engine, err := openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.Service.Expand(ctx,
		cmd.String("page"),
		int(cmd.Int("depth")),
		int(cmd.Int("threshold")),
	)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func printResult(res graph.Result) {
	heading := color.New(color.FgCyan, color.Bold)
	id := color.New(color.FgHiBlack)
	kind := color.New(color.FgYellow)

	titles := make(map[string]string, len(res.Nodes))
	heading.Printf("Pages (%d)\n", len(res.Nodes))
	for _, p := range res.Nodes {
		titles[p.ID] = p.Title
		fmt.Printf("  %s %s\n", p.Title, id.Sprint(p.ID))
	}

	heading.Printf("Edges (%d)\n", len(res.Edges))
	for _, e := range res.Edges {
		dst := titles[e.DstPageID]
		if dst == "" {
			dst = e.DstPageID
		}
		if e.DstBlockID != "" {
			dst += "^" + e.DstBlockID
		}
		fmt.Printf("  %s -%s-> %s\n", titles[e.SrcPageID], kind.Sprint(e.Type), dst)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "bidinote",
		Usage:   "Bidirectional-linking note graph with block references, unlinked mentions and graph queries",
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
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:      "query",
				Usage:     `Filter pages, e.g. 'type="note" AND tag="go"'`,
				ArgsUsage: "<expr>",
				Action:    query,
			},
			{
				Name:  "expand",
				Usage: "Print the neighbourhood of a page",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "page", Aliases: []string{"p"}, Usage: "Anchor page id", Required: true},
					&cli.IntFlag{Name: "depth", Aliases: []string{"d"}, Usage: "Hops from the anchor (negative uses the configured default)", Value: -1},
					&cli.IntFlag{Name: "threshold", Aliases: []string{"t"}, Usage: "Minimum degree to expand a page (negative uses the configured default)", Value: -1},
				},
				Action: expand,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
