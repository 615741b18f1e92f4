// Package cli 实现 habitctl：直接操作本地 SQLite store 的命令行工具
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"habitgrid/internal/repository/sqlite"
	"habitgrid/pkg/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions 是所有子命令共享的全局 flag
type RootOptions struct {
	DBPath  string
	Format  string // "text" | "json"
	Verbose bool
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "habitctl",
		Short: "habitctl - shared habit grid from the terminal",
		Long:  "Inspect period keys, onboard users, log completions and render the shared grid against a local SQLite store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true, // main 负责打印错误
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", config.GetEnv("SQLITE_PATH", "habitgrid.db"), "SQLite database path")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log store activity to stderr")

	cmd.AddCommand(NewPeriodCommand(opts))
	cmd.AddCommand(NewOnboardCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewGridCommand(opts))
	cmd.AddCommand(NewTotalsCommand(opts))

	return cmd
}

func (o *RootOptions) logger() *zap.Logger {
	if !o.Verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func (o *RootOptions) openStore() (*sqlite.Store, *zap.Logger, error) {
	log := o.logger()
	store, err := sqlite.Open(o.DBPath, log)
	if err != nil {
		return nil, nil, err
	}
	return store, log, nil
}

// emit 在 json 模式下输出 v，否则调用 text
func (o *RootOptions) emit(w io.Writer, v any, text func(io.Writer) error) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
