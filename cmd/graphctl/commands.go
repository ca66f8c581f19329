package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/graphadmin-backend/internal/app"
	"github.com/yungbote/graphadmin-backend/internal/data/seed"
	"github.com/yungbote/graphadmin-backend/internal/modules/graphupload"
	"github.com/yungbote/graphadmin-backend/internal/modules/mapping"
	"github.com/yungbote/graphadmin-backend/internal/platform/ctxutil"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

// servicesFactory opens the services a command runs against. The returned close func is always
// non-nil.
type servicesFactory func(ctx context.Context) (app.Services, func(), error)

func newEnvServices(ctx context.Context) (app.Services, func(), error) {
	log, err := logger.New(envOr("LOG_MODE", "test"))
	if err != nil {
		return app.Services{}, func() {}, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.NewWithConfig(ctx, log, app.LoadConfig(nil))
	if err != nil {
		return app.Services{}, func() {}, err
	}
	return a.Services, a.Close, nil
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

type importOptions struct {
	file     string
	nodeType string
	maps     []string
	drops    []string
	dryRun   bool
}

func newRootCmd(open servicesFactory) *cobra.Command {
	var actor string
	root := &cobra.Command{
		Use:           "graphctl",
		Short:         "Manage the graph schema and upload graph files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&actor, "as", envOr("USER", ""), "admin user recorded on change log entries")

	withServices := func(cmd *cobra.Command, fn func(ctx context.Context, svc app.Services) error) error {
		ctx := ctxutil.WithTraceData(cmd.Context(), &ctxutil.TraceData{AdminUser: actor})
		svc, closeFn, err := open(ctx)
		defer closeFn()
		if err != nil {
			return err
		}
		return fn(ctx, svc)
	}

	root.AddCommand(newImportCmd(withServices), newSchemaCmd(withServices), newLogsCmd(withServices))
	return root
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, svc app.Services) error) error

func newImportCmd(run runner) *cobra.Command {
	opts := importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Map a graph JSON file onto a node schema and upload it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides, err := parseOverrides(opts.maps, opts.drops)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, svc app.Services) error {
				return runImport(ctx, cmd.OutOrStdout(), svc, opts, overrides)
			})
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "graph JSON file")
	cmd.Flags().StringVar(&opts.nodeType, "node-type", "", "target node type")
	cmd.Flags().StringArrayVar(&opts.maps, "map", nil, "override a suggestion as source=target (repeatable)")
	cmd.Flags().StringArrayVar(&opts.drops, "drop", nil, "drop a source property (repeatable)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "preview the coerced entities without committing")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("node-type")
	return cmd
}

// parseOverrides turns --map src=dst and --drop src into mapping.Override targets. A drop wins
// over a map of the same source.
func parseOverrides(maps, drops []string) (map[string]string, error) {
	out := map[string]string{}
	for _, m := range maps {
		src, dst, ok := strings.Cut(m, "=")
		src = strings.TrimSpace(src)
		if !ok || src == "" {
			return nil, fmt.Errorf("invalid --map %q: want source=target", m)
		}
		out[src] = strings.TrimSpace(dst)
	}
	for _, d := range drops {
		if d = strings.TrimSpace(d); d != "" {
			out[d] = ""
		}
	}
	return out, nil
}

func runImport(ctx context.Context, w io.Writer, svc app.Services, opts importOptions, overrides map[string]string) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := graphupload.ParseGraphFile(f)
	if err != nil {
		return err
	}
	suggestions, err := svc.Mapping.SuggestMappings(ctx, graphupload.SampleProperties(data), opts.nodeType)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		return fmt.Errorf("node type %q is not in the schema", opts.nodeType)
	}
	mappings := mapping.Override(suggestions, overrides)

	if opts.dryRun {
		preview, err := svc.Upload.PreviewMappings(ctx, data, mappings)
		if err != nil {
			return err
		}
		return writeJSON(w, preview)
	}
	report, err := svc.Upload.ApplyMappings(ctx, data, mappings)
	if err != nil {
		return err
	}
	return writeJSON(w, report)
}

func newSchemaCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export or replace the schema document",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the schema as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, svc app.Services) error {
				schema, err := svc.Schema.GetSchema(ctx)
				if err != nil {
					return err
				}
				raw, err := seed.MarshalSchemaYAML(schema)
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(raw)
					return err
				}
				return os.WriteFile(out, raw, 0o644)
			})
		},
	}
	export.Flags().StringVar(&out, "out", "", "output file (default stdout)")

	var file string
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Validate a YAML schema and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := seed.LoadSchema(file)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, svc app.Services) error {
				if err := svc.Schema.SaveSchema(ctx, schema); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema saved: %d node types\n", len(schema.NodeSchemas))
				return nil
			})
		},
	}
	apply.Flags().StringVar(&file, "file", "", "schema YAML file")
	_ = apply.MarkFlagRequired("file")

	cmd.AddCommand(export, apply)
	return cmd
}

func newLogsCmd(run runner) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print recent schema change log entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, svc app.Services) error {
				logs, err := svc.Schema.GetChangeLogs(ctx, limit)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), logs)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries (max 100)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
