package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"agentd/internal/config"
	"agentd/internal/llm"
)

func newGenerateCmd(o *options) *cobra.Command {
	var (
		temperature float64
		topP        float64
		maxTokens   int
		extraArgs   string
		raw         bool
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "generate <model> <prompt>",
		Short: "Generate text from a prompt with a local model",
		Example: `  agentd generate gemma-2-2b-it "What is the capital of France?"
  agentd generate gemma-2-2b-it "Write a haiku about Go" -t 0.9 -m 64
  agentd generate gemma-2-2b-it "Hello" --args "--n-gpu-layers 20 --temp 0.2"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.setup(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("raw") {
					cfg.Runtime.RawOutput = raw
				}
			})
			if err != nil {
				return err
			}
			b, err := c.Open(args[0])
			if err != nil {
				return err
			}

			flags := b.Config().ExtraArgs
			if cmd.Flags().Changed("args") {
				if flags, err = llm.ParseArgs(extraArgs); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("temperature") {
				flags = llm.OverrideArg(flags, "--temp", strconv.FormatFloat(temperature, 'f', -1, 64))
			}
			if cmd.Flags().Changed("top-p") {
				flags = llm.OverrideArg(flags, "--top-p", strconv.FormatFloat(topP, 'f', -1, 64))
			}
			if cmd.Flags().Changed("max-tokens") {
				flags = llm.OverrideArg(flags, "--n-predict", strconv.Itoa(maxTokens))
			}
			b = b.WithArgs(flags)

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			text, err := b.Generate(ctx, args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	f := cmd.Flags()
	f.Float64VarP(&temperature, "temperature", "t", 0, "sampling temperature (replaces --temp)")
	f.Float64Var(&topP, "top-p", 0, "nucleus sampling threshold (replaces --top-p)")
	f.IntVarP(&maxTokens, "max-tokens", "m", 0, "maximum tokens to generate (replaces --n-predict)")
	f.StringVar(&extraArgs, "args", "", "replace the whole llama.cpp flag list, shell-quoted")
	f.BoolVar(&raw, "raw", false, "print trimmed output without prompt-echo cleaning")
	f.DurationVar(&timeout, "timeout", 0, "kill the generator after this long (0 waits forever)")
	return cmd
}
