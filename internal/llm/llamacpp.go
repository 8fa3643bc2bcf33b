package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"agentd/internal/common/fsutil"
	"agentd/internal/errs"
)

// BackendLlamaCpp names the llama.cpp CLI backend in config and metrics.
const BackendLlamaCpp = "llama.cpp"

// waitDelay bounds how long Wait blocks on output pipes after the child is
// killed by context cancellation.
const waitDelay = 2 * time.Second

// LlamaCppBackend drives llama-cli (or anything honoring its stdin/stdout
// contract) as one child process per Generate call.
type LlamaCppBackend struct {
	spec    InvocationSpec
	log     zerolog.Logger
	raw     bool
	timeout time.Duration
}

// Option configures a LlamaCppBackend.
type Option func(*LlamaCppBackend)

// WithLogger sets the logger for spawn/exit events.
func WithLogger(l zerolog.Logger) Option { return func(b *LlamaCppBackend) { b.log = l } }

// WithRawOutput skips prompt-echo cleaning; output is only trimmed.
func WithRawOutput(raw bool) Option { return func(b *LlamaCppBackend) { b.raw = raw } }

// WithTimeout kills the child if a call runs longer than d. Zero disables.
func WithTimeout(d time.Duration) Option { return func(b *LlamaCppBackend) { b.timeout = d } }

// NewLlamaCppBackend validates the model path and returns a backend for spec.
// No process is started until Generate.
func NewLlamaCppBackend(spec InvocationSpec, opts ...Option) (*LlamaCppBackend, error) {
	if strings.TrimSpace(spec.ModelPath) == "" || !fsutil.IsRegularFile(spec.ModelPath) {
		return nil, errs.InvalidModelPath("%s", spec.ModelPath)
	}
	if strings.TrimSpace(spec.ExecutablePath) == "" {
		return nil, errs.ProcessSpawn("<empty>", errors.New("executable path is empty"))
	}
	b := &LlamaCppBackend{spec: spec.Clone(), log: zerolog.Nop()}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// Config returns a copy of the backend's invocation.
func (b *LlamaCppBackend) Config() InvocationSpec { return b.spec.Clone() }

// WithArgs returns a new backend sharing every setting except the flag list,
// which is replaced by args.
func (b *LlamaCppBackend) WithArgs(args []string) Backend {
	nb := *b
	nb.spec = b.spec.WithArgs(args)
	return &nb
}

// processOutcome is what one child run leaves behind.
type processOutcome struct {
	exitCode int
	stdout   []byte
	stderr   []byte
}

// Generate spawns the executable, pipes prompt to it and returns the cleaned
// response. Safe for concurrent use; each call owns its own child.
func (b *LlamaCppBackend) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := b.generate(ctx, prompt)
	observe(BackendLlamaCpp, err, time.Since(start))
	if err != nil {
		b.log.Debug().Err(err).Str("kind", errs.KindOf(err).String()).Dur("dur", time.Since(start)).Msg("generate failed")
		return "", err
	}
	b.log.Debug().Int("chars", len(text)).Dur("dur", time.Since(start)).Msg("generate done")
	return text, nil
}

func (b *LlamaCppBackend) generate(ctx context.Context, prompt string) (string, error) {
	out, err := b.run(ctx, prompt)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out.stdout) {
		return "", errs.Encoding(fmt.Errorf("%d bytes of stdout", len(out.stdout)))
	}
	text := string(out.stdout)
	if strings.TrimSpace(text) == "" {
		return "", errs.EmptyResponse()
	}
	if b.raw {
		return strings.TrimSpace(text), nil
	}
	return Clean(text, prompt), nil
}

// run executes the child to completion. stdin is closed on every path
// before Wait so the child always observes end of input.
func (b *LlamaCppBackend) run(ctx context.Context, prompt string) (processOutcome, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, b.spec.ExecutablePath, b.spec.Argv()...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return processOutcome{}, errs.IO(err, "stdin pipe")
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return processOutcome{}, errs.ProcessSpawn(b.spec.ExecutablePath, err)
	}
	b.log.Debug().Str("exe", b.spec.ExecutablePath).Strs("args", cmd.Args[1:]).Int("pid", cmd.Process.Pid).Msg("spawned")

	_, werr := io.WriteString(stdin, prompt)
	cerr := stdin.Close()
	waitErr := cmd.Wait()

	out := processOutcome{exitCode: -1, stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	if cmd.ProcessState != nil {
		out.exitCode = cmd.ProcessState.ExitCode()
	}
	b.log.Debug().Int("pid", cmd.Process.Pid).Int("exit", out.exitCode).Int("stdout_bytes", len(out.stdout)).Int("stderr_bytes", len(out.stderr)).Msg("exited")

	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, errs.ProcessExecution(out.exitCode, string(out.stderr), ctxErr)
		}
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) {
			return out, errs.ProcessExecution(ee.ExitCode(), string(out.stderr), ee)
		}
		return out, errs.IO(waitErr, "wait for %s", b.spec.ExecutablePath)
	}
	if err := firstRealWriteErr(werr, cerr); err != nil {
		return out, errs.IO(err, "write prompt to %s", b.spec.ExecutablePath)
	}
	return out, nil
}

// firstRealWriteErr drops broken-pipe errors: a child that exits without
// reading all of stdin is judged by its exit status, not by our write.
func firstRealWriteErr(errList ...error) error {
	for _, err := range errList {
		if err == nil || errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
			continue
		}
		return err
	}
	return nil
}
