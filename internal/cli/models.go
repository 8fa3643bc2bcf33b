package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"agentd/internal/errs"
	"agentd/pkg/types"
)

const noModelsHint = "No models found. Download a model with: agentd download <model-name>"

// writeStructured encodes v as json or yaml. ok is false for any other format.
func writeStructured(w io.Writer, format string, v any) (ok bool, err error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case "", "text":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func newListCmd(o *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured and discovered models",
		Example: "  agentd list\n  agentd list -o json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.setup(cmd, nil)
			if err != nil {
				return err
			}
			models, err := c.Catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if models == nil {
				models = []types.Model{}
			}
			if ok, err := writeStructured(out, output, types.ModelsResponse{Models: models}); ok {
				return err
			}
			if len(models) == 0 {
				_, err := fmt.Fprintln(out, noModelsHint)
				return err
			}
			fmt.Fprintln(out, "Available models:")
			fmt.Fprintln(out)
			for _, m := range models {
				mark := "✗"
				if m.Available {
					mark = "✓"
				}
				fmt.Fprintf(out, "  %s %s - %s\n", mark, m.Name, m.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml")
	return cmd
}

func newInfoCmd(o *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "info <model>",
		Short:   "Show details of one model",
		Example: "  agentd info gemma-2-2b-it\n  agentd info gemma-2-2b-it -o yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.setup(cmd, nil)
			if err != nil {
				return err
			}
			m, err := c.Describe(args[0])
			if err != nil {
				return err
			}
			if !m.Available {
				return errs.InvalidModelPath("%s", m.Path)
			}
			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, output, m); ok {
				return err
			}
			fmt.Fprintf(out, "Model: %s\n", m.Name)
			fmt.Fprintf(out, "File: %s\n", m.File)
			fmt.Fprintf(out, "Path: %s\n", m.Path)
			fmt.Fprintf(out, "Description: %s\n", m.Description)
			if m.ContextSize > 0 {
				fmt.Fprintf(out, "Context Size: %d\n", m.ContextSize)
			}
			fmt.Fprintf(out, "File Size: %d MB\n", m.SizeBytes/(1024*1024))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|yaml")
	return cmd
}
