package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/diagramkit/internal/codec"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/paths"
	"github.com/zjrosen/diagramkit/internal/store"
	"github.com/zjrosen/diagramkit/internal/tracing"
)

var (
	storeDB     string
	storeFormat string
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Save and load diagrams in the local snapshot store",
	Long: `Manage named diagram snapshots in a sqlite database.

The database defaults to ~/.config/diagramkit/diagrams.db and can be moved
with store.path in the config file or --db.`,
}

var storeSaveCmd = &cobra.Command{
	Use:   "save <name> <file>",
	Short: "Save a diagram file under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := readDiagram(args[1], "")
		if err != nil {
			return err
		}
		defer d.Dispose()

		var opts []store.Option
		if storeFormat != "" {
			c, err := codec.ForFormat(storeFormat)
			if err != nil {
				return err
			}
			opts = append(opts, store.WithCodec(c))
		}
		return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
			entry, err := s.Save(ctx, args[0], d)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s revision %d (%d bytes, %s)\n",
				entry.Name, entry.Revision, entry.Bytes, entry.Format)
			return nil
		}, opts...)
	},
}

var storeLoadCmd = &cobra.Command{
	Use:   "load <name> <file>",
	Short: "Write a stored diagram to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
			d, entry, err := s.Load(ctx, args[0], events.NewAggregator())
			if err != nil {
				return err
			}
			defer d.Dispose()
			if err := writeDiagram(args[1], "", d); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s revision %d to %s\n", entry.Name, entry.Revision, args[1])
			return nil
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored diagrams, most recently saved first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
			entries, err := s.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "no stored diagrams")
				return nil
			}
			_, _ = fmt.Fprintf(out, "%-24s %8s %-8s %8s  %s\n", "NAME", "REVISION", "FORMAT", "BYTES", "UPDATED")
			for _, e := range entries {
				_, _ = fmt.Fprintf(out, "%-24s %8d %-8s %8d  %s\n",
					e.Name, e.Revision, e.Format, e.Bytes, e.UpdatedAt.Local().Format(time.DateTime))
			}
			return nil
		})
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
			if err := s.Delete(ctx, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	storeCmd.PersistentFlags().StringVar(&storeDB, "db", "", "sqlite database file (overrides store.path)")
	storeSaveCmd.Flags().StringVar(&storeFormat, "format", "", "body encoding (json, yaml, msgpack; default msgpack)")
	storeCmd.AddCommand(storeSaveCmd, storeLoadCmd, storeListCmd, storeDeleteCmd)
	rootCmd.AddCommand(storeCmd)
}

// withStore opens the store with tracing and caching from the config, runs
// fn and shuts everything down again.
func withStore(ctx context.Context, fn func(context.Context, *store.Store) error, opts ...store.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.ErrorErr(log.CatStore, "tracing shutdown failed", err)
		}
	}()

	path := storeDB
	if path == "" {
		path = paths.ResolveStorePath(cfg.Store.Path)
	}
	opts = append([]store.Option{
		store.WithTracer(provider.Tracer()),
		store.WithCacheTTL(cfg.Store.CacheTTL),
	}, opts...)
	s, err := store.Open(ctx, path, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(ctx, s)
}
