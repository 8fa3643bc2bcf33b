package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"agentd/internal/errs"
)

type knownModel struct {
	repo string
	file string
}

func (k knownModel) url() string { return "https://huggingface.co/" + k.repo }

// knownModels are the models download can point at.
var knownModels = map[string]knownModel{
	"gemma-2-2b-it": {repo: "bartowski/gemma-2-2b-it-GGUF", file: "gemma-2-2b-it-Q4_K_M.gguf"},
	"gemma-2-2b":    {repo: "bartowski/gemma-2-2b-GGUF", file: "gemma-2-2b-Q4_K_M.gguf"},
}

func knownModelNames() []string {
	names := make([]string, 0, len(knownModels))
	for n := range knownModels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// newDownloadCmd prints fetch instructions; nothing is downloaded.
func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "download <model>",
		Short:     "Print download instructions for a known model",
		Long:      "Print huggingface-cli instructions for one of: " + strings.Join(knownModelNames(), ", "),
		Example:   "  agentd download gemma-2-2b-it",
		Args:      cobra.ExactArgs(1),
		ValidArgs: knownModelNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, ok := knownModels[args[0]]
			if !ok {
				return errs.InvalidModelPath("unknown model: %s", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloading model: %s\n", args[0])
			fmt.Fprintf(out, "This would download from: %s\n", k.url())
			fmt.Fprintf(out, "File: %s\n", k.file)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "For now, please use huggingface-cli:")
			fmt.Fprintf(out, "  huggingface-cli download %s %s --local-dir ~/.agentd/models/\n", k.repo, k.file)
			return nil
		},
	}
}
