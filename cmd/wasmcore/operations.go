package main

import (
	"fmt"
	"strconv"
	"strings"

	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/spf13/cobra"
)

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add A B",
		Short: "Add two int32 values (wraps on overflow)",
		Example: `  wasmcore add 2 3
  wasmcore add -- -5 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseInt32(args[0])
			if err != nil {
				return err
			}
			y, err := parseInt32(args[1])
			if err != nil {
				return err
			}

			ops, cleanup, err := a.operations(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			sum, err := ops.Add(cmd.Context(), x, y)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), wasmcore.AddResponse{Sum: sum}, strconv.FormatInt(int64(sum), 10))
		},
	}
}

func (a *app) sumCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sum [X...]",
		Aliases: []string{"sum_f32"},
		Short:   "Sum float32 values left to right",
		Example: `  wasmcore sum 1.5 2.5
  wasmcore sum -- -1.5 2
  wasmcore sum`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]float32, 0, len(args))
			for _, arg := range args {
				v, err := strconv.ParseFloat(arg, 32)
				if err != nil {
					return fmt.Errorf("invalid float32 %q: %w", arg, err)
				}
				values = append(values, float32(v))
			}

			ops, cleanup, err := a.operations(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			sum, err := ops.SumF32(cmd.Context(), values)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), wasmcore.SumF32Response{Sum: sum}, strconv.FormatFloat(float64(sum), 'g', -1, 32))
		},
	}
}

func (a *app) helloCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hello NAME",
		Short: "Greet NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, cleanup, err := a.operations(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			greeting, err := ops.Hello(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), wasmcore.HelloResponse{Greeting: greeting}, greeting)
		},
	}
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid int32 %q: %w", s, err)
	}
	return int32(v), nil
}

// flagError points at "--" when pflag mistook a negative operand for a
// shorthand flag, e.g. "unknown shorthand flag: '1' in -1.5".
func flagError(cmd *cobra.Command, err error) error {
	msg := err.Error()
	i := strings.LastIndex(msg, " in -")
	if !strings.HasPrefix(msg, "unknown shorthand flag") || i < 0 {
		return err
	}
	arg := msg[i+len(" in "):]
	if _, perr := strconv.ParseFloat(arg, 64); perr != nil {
		return err
	}
	return fmt.Errorf("%w: negative numbers must follow \"--\", e.g. %s -- %s", err, cmd.CommandPath(), arg)
}
