package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/arrayschema"
	"github.com/aretw0/arrayschema/internal/config"
	"github.com/aretw0/arrayschema/internal/logging"
	"github.com/aretw0/arrayschema/pkg/registry"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned after a failed validation has been
// reported, so the process exits non-zero without repeating the violation.
var errValidationFailed = errors.New("validation failed")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "arrayschema",
		Short:         "arrayschema validates labeled arrays and tables against declarative schemas",
		Long:          `arrayschema checks labeled multi-dimensional arrays and tables against JSON or YAML schema documents, keeps named schemas in a store and serves them over HTTP and MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (default "+config.DefaultPath+" when present)")
	flags.String("backend", "", "Schema store backend: memory, file or redis")
	flags.String("store-dir", "", "Directory of the file store")
	flags.String("redis-addr", "", "Address of the redis store")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")

	cmd.AddCommand(
		newValidateCmd(),
		newCheckCmd(),
		newDescribeCmd(),
		newSchemasCmd(),
		newServeCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		os.Exit(1)
	}
}

// env is the resolved configuration of one command invocation.
type env struct {
	cfg    config.Config
	logger *slog.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewWriter(cmd.ErrOrStderr(), level, logging.Format(cfg.Log.Format))
	return &env{cfg: cfg, logger: logger}, nil
}

// open builds the registry over the configured store.
func (e *env) open(opts ...registry.Option) (*registry.Registry, *arrayschema.Store, error) {
	opts = append([]registry.Option{registry.WithLogger(e.logger)}, opts...)
	reg, store, err := arrayschema.Open(e.cfg.Store, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", e.cfg.Store.Backend, err)
	}
	return reg, store, nil
}

// withRegistry loads the configuration, opens the registry and closes the
// store once fn returns.
func withRegistry(cmd *cobra.Command, fn func(*registry.Registry, *env) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	reg, store, err := e.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			e.logger.Warn("closing store", "error", cerr)
		}
	}()
	return fn(reg, e)
}

// readSchemaFile decodes a schema document, either bare or wrapped in a
// {kind, schema} envelope.
func readSchemaFile(path string) (schema.Validator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := registry.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	v, err := doc.Decode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
