package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/userbook/internal/buildinfo"
	"github.com/dmitrijs2005/userbook/internal/common"
	"github.com/dmitrijs2005/userbook/internal/config"
	"github.com/dmitrijs2005/userbook/internal/logging"
	"github.com/dmitrijs2005/userbook/internal/repositories/users"
	"github.com/dmitrijs2005/userbook/internal/services"
)

var (
	// initLogging is a test seam for logging.Init.
	initLogging = logging.Init

	// openRepository is a test seam for users.Open.
	openRepository = users.Open
)

// command holds the state shared by the cobra command tree.
type command struct {
	in        io.Reader
	out       io.Writer
	lookupEnv func(string) (string, bool)

	configPath string
	storage    string
	logFile    string
	logLevel   string

	cfg   *config.Config
	store *services.UserStore
	app   *App
}

// Execute runs the userbook command tree against the process stdin, stdout
// and environment. Errors not already shown to the operator are printed to
// stderr.
func Execute() error {
	c := &command{in: os.Stdin, out: os.Stdout, lookupEnv: os.LookupEnv}
	err := c.execute(context.Background(), os.Args[1:])
	if err != nil && !isReported(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// execute runs the command tree with args and releases the store afterwards,
// whether or not the command succeeded.
func (c *command) execute(ctx context.Context, args []string) error {
	root := c.root()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	if c.store != nil {
		logging.L().Info(ctx, "program terminated")
		if cerr := c.store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close storage: %w", cerr)
		}
	}
	return err
}

func (c *command) root() *cobra.Command {
	root := &cobra.Command{
		Use:               "userbook",
		Short:             "Manage local user records",
		Version:           buildinfo.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runMenu,
	}
	root.SetIn(c.in)
	root.SetOut(c.out)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "path to a JSON or YAML config file")
	pf.StringVarP(&c.storage, "storage", "s", "", "storage location: file path, file://, sqlite://, postgres:// or s3://bucket/key")
	pf.StringVar(&c.logFile, "log-file", "", "append-only operation log (default user_operations.log)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(c.menuCmd(), c.addCmd(), c.listCmd(), c.updateCmd(), c.deleteCmd())
	return root
}

// setup resolves configuration, starts the process log and loads the store.
func (c *command) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(c.configPath, c.lookupEnv)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("storage") {
		cfg.Storage = c.storage
	}
	if flags.Changed("log-file") {
		cfg.LogFile = c.logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	c.cfg = cfg

	err = initLogging(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil && !errors.Is(err, logging.ErrAlreadyInitialized) {
		return fmt.Errorf("init logging: %w", err)
	}

	ctx := cmd.Context()
	repo, err := openRepository(ctx, cfg.Storage, users.Options{S3: users.S3Options{
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	}})
	if err != nil {
		logging.L().Error(ctx, "failed to open storage", "storage", cfg.Storage, "error", err)
		return fmt.Errorf("open storage: %w", err)
	}

	c.store = services.NewUserStore(ctx, repo)
	c.app = NewApp(c.store, c.in, c.out)
	return nil
}

func (c *command) runMenu(cmd *cobra.Command, _ []string) error {
	c.app.Run(cmd.Context())
	return nil
}

func (c *command) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE:  c.runMenu,
	}
}

func (c *command) addCmd() *cobra.Command {
	var name, number string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user; the password is prompted for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.addWithPassword(cmd.Context(), name, number)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "user name")
	cmd.Flags().StringVar(&number, "number", "", "phone number (05xxxxxxxxx)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("number")
	return cmd
}

func (c *command) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.ListUsers(cmd.Context())
		},
	}
}

func (c *command) updateCmd() *cobra.Command {
	var field, value string
	cmd := &cobra.Command{
		Use:   "update <number>",
		Short: "Update one field of the first user with the given phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, ok := c.app.users.FindUser(args[0]); !ok {
				return c.app.report(ctx, fmt.Errorf("%w: %s", common.ErrNotFound, args[0]), "")
			}
			return c.app.updateField(ctx, args[0], field, value)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "field to change: name, number or password")
	cmd.Flags().StringVar(&value, "value", "", "new value; prompted for when empty")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func (c *command) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete the first user with the given phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.deleteNumber(cmd.Context(), args[0])
		},
	}
}
