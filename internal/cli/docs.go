package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpad/pkg/cache"
	"github.com/matzehuels/blockpad/pkg/document"
	"github.com/matzehuels/blockpad/pkg/io"
	"github.com/matzehuels/blockpad/pkg/store"
)

// dialTimeout bounds how long docs commands wait for a store backend.
const dialTimeout = 30 * time.Second

// storeOptions selects and configures a document store backend.
type storeOptions struct {
	Backend string // file, memory, redis, mongo, postgres

	Dir           string // file: base directory, empty for the default
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
}

// register binds the backend flags onto cmd as persistent flags so every
// docs subcommand shares them.
func (o *storeOptions) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.Backend, "store", "file", "store backend (file, memory, redis, mongo, postgres)")
	f.StringVar(&o.Dir, "dir", "", "file store directory (default ~/.config/blockpad/documents)")
	f.StringVar(&o.RedisAddr, "redis-addr", "localhost:6379", "redis address")
	f.StringVar(&o.RedisPassword, "redis-password", "", "redis password")
	f.IntVar(&o.RedisDB, "redis-db", 0, "redis database number")
	f.StringVar(&o.MongoURI, "mongo-uri", "mongodb://localhost:27017", "mongodb connection string")
	f.StringVar(&o.MongoDatabase, "mongo-db", "", "mongodb database name")
	f.StringVar(&o.PostgresDSN, "postgres-dsn", "", "postgres connection string")
}

// open dials the configured backend. Network backends retry transient
// dial failures with backoff before giving up.
func (o *storeOptions) open(ctx context.Context) (store.Store, error) {
	switch o.Backend {
	case "file":
		return store.NewFileStore(o.Dir)
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return dialStore(ctx, func(ctx context.Context) (store.Store, error) {
			return store.NewRedisStore(ctx, store.RedisConfig{
				Addr:     o.RedisAddr,
				Password: o.RedisPassword,
				DB:       o.RedisDB,
			})
		})
	case "mongo":
		return dialStore(ctx, func(ctx context.Context) (store.Store, error) {
			return store.NewMongoStore(ctx, store.MongoConfig{
				URI:      o.MongoURI,
				Database: o.MongoDatabase,
			})
		})
	case "postgres":
		if o.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres store requires --postgres-dsn")
		}
		return dialStore(ctx, func(ctx context.Context) (store.Store, error) {
			pg, err := store.NewPGStore(ctx, o.PostgresDSN)
			if err != nil {
				return nil, err
			}
			if err := pg.CreateSchema(ctx); err != nil {
				pg.Close()
				return nil, err
			}
			return pg, nil
		})
	default:
		return nil, fmt.Errorf("unknown store backend: %s (must be 'file', 'memory', 'redis', 'mongo', or 'postgres')", o.Backend)
	}
}

// dialStore connects with retries, treating every dial error as transient.
func dialStore(ctx context.Context, connect func(context.Context) (store.Store, error)) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	var st store.Store
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		st, err = connect(ctx)
		if err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	return st, nil
}

// =============================================================================
// docs Command
// =============================================================================

// docsCommand creates the docs command with subcommands.
func (c *CLI) docsCommand() *cobra.Command {
	opts := &storeOptions{}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents in a store",
		Long: `Push, pull, list, and remove documents in a document store.

The default backend is a file store under ~/.config/blockpad/documents/.
Shared backends (redis, mongo, postgres) let several machines work against
the same library of programs.`,
	}

	opts.register(cmd)

	cmd.AddCommand(c.docsListCommand(opts))
	cmd.AddCommand(c.docsPushCommand(opts))
	cmd.AddCommand(c.docsPullCommand(opts))
	cmd.AddCommand(c.docsRmCommand(opts))

	return cmd
}

// docsListCommand creates the list subcommand.
func (c *CLI) docsListCommand(opts *storeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			infos, err := st.List(ctx)
			if err != nil {
				return fmt.Errorf("list documents: %w", err)
			}
			if len(infos) == 0 {
				printInfo("No documents in the %s store", opts.Backend)
				return nil
			}

			fmt.Println(renderDocTable(infos))
			printDetail("%d document(s) in the %s store", len(infos), opts.Backend)
			return nil
		},
	}
}

// docsPushCommand creates the push subcommand.
func (c *CLI) docsPushCommand(opts *storeOptions) *cobra.Command {
	var (
		name string
		id   string
	)

	cmd := &cobra.Command{
		Use:   "push [document.json]",
		Short: "Upload a document to the store",
		Long: `Validate a document file and save it to the store. Without --id a new
record is created; with --id an existing record is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := args[0]

			doc, err := io.ImportFile(input)
			if err != nil {
				return err
			}
			if err := document.Validate(doc); err != nil {
				return fmt.Errorf("validate %s: %w", input, err)
			}

			st, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if name == "" {
				name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			}

			prog := newProgress(c.Logger)
			rec := &store.Record{ID: id, Name: name, Document: doc}
			if id != "" {
				if existing, err := st.Load(ctx, id); err == nil {
					rec.CreatedAt = existing.CreatedAt
				}
			}
			if err := st.Save(ctx, rec); err != nil {
				return fmt.Errorf("save document: %w", err)
			}
			prog.done(fmt.Sprintf("Pushed %s", input))

			printSuccess("Pushed %s", rec.Name)
			printKeyValue("ID", StyleValue.Render(rec.ID))
			printNextStep("Pull", fmt.Sprintf("blockpad docs pull %s", rec.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "document name (default: file name)")
	cmd.Flags().StringVar(&id, "id", "", "replace the record with this ID instead of creating one")

	return cmd
}

// docsPullCommand creates the pull subcommand.
func (c *CLI) docsPullCommand(opts *storeOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull [id]",
		Short: "Download a document from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			st, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			prog := newProgress(c.Logger)
			rec, err := st.Load(ctx, id)
			if err != nil {
				return fmt.Errorf("load document: %w", err)
			}
			prog.done(fmt.Sprintf("Pulled %s", id))

			path := output
			if path == "" {
				path = pullFileName(rec)
			}
			if err := io.ExportFile(rec.Document, path); err != nil {
				return err
			}

			printSuccess("Pulled %s", rec.Name)
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: derived from the document name)")

	return cmd
}

// docsRmCommand creates the rm subcommand.
func (c *CLI) docsRmCommand(opts *storeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id...]",
		Short: "Remove documents from the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range args {
				if err := st.Delete(ctx, id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				printSuccess("Removed %s", id)
			}
			return nil
		},
	}
}

// =============================================================================
// Listing Helpers
// =============================================================================

// renderDocTable formats store listings as a bordered table.
func renderDocTable(infos []store.Info) string {
	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{shortID(info.ID), info.Name, formatRelativeTime(info.UpdatedAt)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case 2:
				return lipgloss.NewStyle().Foreground(colorGray)
			default:
				return lipgloss.NewStyle()
			}
		})

	return t.Render()
}

// shortID truncates UUIDs for table display. Full IDs remain required for
// pull and rm.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// pullFileName derives an output file name from a record, preferring the
// human name over the UUID.
func pullFileName(rec *store.Record) string {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = rec.ID
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	if name == "" {
		name = rec.ID
	}
	return name + ".json"
}

// formatRelativeTime renders a timestamp as a relative age for listings.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
