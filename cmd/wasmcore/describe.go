package main

import (
	"encoding/json"
	"fmt"
	"strings"

	wasmcore "github.com/reglet-dev/wasm-core"
	"github.com/reglet-dev/wasm-core/application/schema"
	"github.com/reglet-dev/wasm-core/domain/entities"
	"github.com/reglet-dev/wasm-core/host"
	"github.com/spf13/cobra"
)

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Show the module name, version and operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			meta := wasmcore.Describe()
			if a.cfg.Wasm != "" {
				inst, cleanup, err := a.wasmInstance(cmd)
				if err != nil {
					return err
				}
				defer cleanup()
				if meta, err = inst.Describe(cmd.Context()); err != nil {
					return err
				}
			}
			return a.render(cmd.OutOrStdout(), meta, describeText(meta))
		},
	}
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schemas of the operation requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data []byte
				err  error
			)
			if a.cfg.Wasm != "" {
				inst, cleanup, ierr := a.wasmInstance(cmd)
				if ierr != nil {
					return ierr
				}
				defer cleanup()
				data, err = inst.Schema(cmd.Context())
			} else {
				data, err = schema.OperationSchemas()
			}
			if err != nil {
				return err
			}

			if a.cfg.Output == "yaml" {
				var doc map[string]any
				if err := json.Unmarshal(data, &doc); err != nil {
					return err
				}
				return writeYAML(cmd.OutOrStdout(), doc)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Output == "json" {
				return a.render(cmd.OutOrStdout(), a.cfg, "")
			}
			return writeYAML(cmd.OutOrStdout(), a.cfg)
		},
	}
}

// wasmInstance loads the --wasm guest for commands that need more than
// Operations.
func (a *app) wasmInstance(cmd *cobra.Command) (*host.Instance, func(), error) {
	loader, cleanup, err := a.wasmLoader(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	inst, err := loader.Instance(cmd.Context())
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return inst, cleanup, nil
}

func describeText(meta entities.Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n%s\n", meta.Name, meta.Version, meta.Description)
	for _, op := range meta.Operations {
		fmt.Fprintf(&b, "\n  %-8s (%s) -> (%s)\n           %s",
			op.Name, strings.Join(op.Params, ", "), strings.Join(op.Results, ", "), op.Description)
	}
	return b.String()
}
