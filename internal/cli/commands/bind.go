package commands

import (
	"fmt"
	"io"

	"github.com/leapstack-labs/leaptds/internal/config"
	"github.com/leapstack-labs/leaptds/pkg/adapters/mssql"
	"github.com/leapstack-labs/leaptds/pkg/adapters/mssql/dialect"
	"github.com/leapstack-labs/leaptds/pkg/core"
	"github.com/leapstack-labs/leaptds/pkg/dispatch"
	"github.com/spf13/cobra"
)

// BindOptions holds options for the bind command.
type BindOptions struct {
	Mode  string
	Args  []string
	Outs  []string
	Input string
}

// NewBindCommand creates the bind command.
func NewBindCommand() *cobra.Command {
	opts := &BindOptions{}

	cmd := &cobra.Command{
		Use:   "bind [SQL]",
		Short: "Print the batch exec would send, without connecting",
		Long: `Bind a SQL template and its arguments and print the resulting
sp_executesql batch. No connection is made. Literal rendering follows the
params of the selected server when it is configured.`,
		Example: `  leaptds bind "SELECT * FROM t WHERE id = @id" --arg id=5
  leaptds bind "SET @xOUT = @y" --arg y=str:hello --out x=0 --mode each`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBind(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", modeRaw, "Execution mode: rowcount, insert, each, raw, outputs")
	cmd.Flags().StringArrayVarP(&opts.Args, "arg", "a", nil, "Argument as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Outs, "out", nil, "Output argument as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file (- for stdin)")

	return cmd
}

func runBind(cmd *cobra.Command, args []string, opts *BindOptions) error {
	cfg := config.FromContext(cmd.Context())

	sqlText, err := readSQL(cmd.InOrStdin(), args, opts.Input)
	if err != nil {
		return err
	}
	arguments, err := parseArgs(opts.Args, opts.Outs)
	if err != nil {
		return err
	}

	d := dialect.New()
	if server, ok := cfg.Server(""); ok {
		params, err := mssql.ParseParams(server.Params)
		if err != nil {
			return fmt.Errorf("server %s: %w", cfg.DefaultServer, err)
		}
		if d, err = mssql.NewDialect(params); err != nil {
			return fmt.Errorf("server %s: %w", cfg.DefaultServer, err)
		}
	}

	return bindTo(cmd.OutOrStdout(), d, sqlText, arguments, opts.Mode)
}

// bindTo writes the batch for sqlText in the named mode.
func bindTo(w io.Writer, d core.Dialect, sqlText string, args []core.Argument, mode string) error {
	var m core.Mode
	switch mode {
	case modeOutputs:
		m = core.ModeEachRow
	default:
		var err error
		if m, err = core.ParseMode(mode); err != nil {
			return err
		}
	}

	batch, _, err := dispatch.BuildSQL(d, core.Request{SQL: sqlText, Args: args, Mode: m})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, batch)
	return nil
}
