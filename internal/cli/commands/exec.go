package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leaptds/internal/config"
	"github.com/leapstack-labs/leaptds/pkg/adapter"
	"github.com/leapstack-labs/leaptds/pkg/core"
	"github.com/leapstack-labs/leaptds/pkg/dispatch"
	"github.com/spf13/cobra"
)

// Execution modes accepted by the exec command.
const (
	modeRowCount = "rowcount"
	modeInsert   = "insert"
	modeEach     = "each"
	modeRaw      = "raw"
	modeOutputs  = "outputs"
)

// ExecOptions holds options for the exec command.
type ExecOptions struct {
	Mode  string
	Args  []string
	Outs  []string
	Input string
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Execute a SQL template on a server",
		Long: `Execute a SQL template through sp_executesql.

Arguments are given as name=value pairs and referenced in the template as
@name. Values are typed automatically (null, true/false, integers, floats,
0x hex) or explicitly with a prefix: str, int, float, numeric, bool, hex,
date, time, datetime, null. Names ending in OUT, and names given with --out,
are OUTPUT parameters.`,
		Example: `  # Count affected rows
  leaptds exec "UPDATE users SET active = 0 WHERE id = @id" --arg id=5

  # Insert and print the identity value
  leaptds exec "INSERT INTO users (name) VALUES (@name)" --arg name=str:bob --mode insert

  # Print rows of a query
  leaptds exec "SELECT * FROM users WHERE created > @since" --arg since=date:2024-01-01 --mode raw

  # Read an output parameter
  leaptds exec "SET @idOUT = 42" --out id=0`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", modeRowCount, "Execution mode: rowcount, insert, each, raw, outputs")
	cmd.Flags().StringArrayVarP(&opts.Args, "arg", "a", nil, "Argument as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Outs, "out", nil, "Output argument as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file (- for stdin)")

	_ = cmd.RegisterFlagCompletionFunc("mode", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{modeRowCount, modeInsert, modeEach, modeRaw, modeOutputs}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExec(cmd *cobra.Command, args []string, opts *ExecOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	sqlText, err := readSQL(cmd.InOrStdin(), args, opts.Input)
	if err != nil {
		return err
	}
	arguments, err := parseArgs(opts.Args, opts.Outs)
	if err != nil {
		return err
	}

	pool := adapter.NewPool(cfg.Servers, logger)
	defer func() { _ = pool.Close() }()

	d := dispatch.New(pool,
		dispatch.WithLogger(logger),
		dispatch.WithDefaultServer(cfg.DefaultServer))

	return execute(ctx, cmd.OutOrStdout(), d, sqlText, arguments, opts.Mode, cfg.Output)
}

// execute runs sqlText in the named mode and renders the result to w.
func execute(ctx context.Context, w io.Writer, d *dispatch.Dispatcher, sqlText string, args []core.Argument, mode, format string) error {
	hasOutputs := core.Request{Args: args}.HasOutputs()

	switch mode {
	case modeRowCount:
		n, err := d.ExecuteRowCount(ctx, sqlText, args...)
		if err != nil {
			return err
		}
		return renderScalar(w, "AffectedRows", n, format)

	case modeInsert:
		id, err := d.ExecuteInsertID(ctx, sqlText, args...)
		if err != nil {
			return err
		}
		return renderScalar(w, "Ident", id, format)

	case modeEach, modeOutputs:
		if hasOutputs {
			row, err := d.ExecuteOutputs(ctx, sqlText, args...)
			if err != nil {
				return err
			}
			if row == nil {
				return renderRows(w, nil, nil, format)
			}
			return renderRows(w, row.Columns, []*core.Row{row}, format)
		}
		if mode == modeOutputs {
			return fmt.Errorf("mode %s needs at least one output argument", mode)
		}
		return d.ExecuteEachRow(ctx, sqlText, args...)

	case modeRaw:
		var (
			cols []string
			rows []*core.Row
		)
		err := d.Each(ctx, sqlText, args, func(r *core.Row) error {
			if cols == nil {
				cols = r.Columns
			}
			rows = append(rows, r)
			return nil
		})
		if err != nil {
			return err
		}
		return renderRows(w, cols, rows, format)
	}

	return fmt.Errorf("unknown mode %q (expected %s)", mode,
		strings.Join([]string{modeRowCount, modeInsert, modeEach, modeRaw, modeOutputs}, ", "))
}

// readSQL returns the statement from the positional arguments or the input file.
func readSQL(stdin io.Reader, args []string, input string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case input == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	case input != "":
		content, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	}
	return "", fmt.Errorf("no SQL given (pass it as an argument or use --input)")
}
