// Package agentd opens local models by name and generates text with them
// through an external llama.cpp executable.
//
//	c, err := agentd.Default()
//	llm, err := c.Open("gemma-2-2b-it")
//	text, err := llm.Generate(ctx, "What is the capital of France?")
package agentd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agentd/internal/config"
	"agentd/internal/errs"
	"agentd/internal/llm"
	"agentd/internal/registry"
	"agentd/pkg/types"
)

type (
	Config         = config.Config
	Paths          = config.Paths
	InvocationSpec = llm.InvocationSpec
	Backend        = llm.Backend
	Model          = types.Model
)

// Client ties configuration, model resolution and backend construction together.
type Client struct {
	paths    config.Paths
	cfg      config.Config
	cfgSet   bool
	userHome string
	resolver *registry.Resolver
	log      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger handed to every backend.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// WithConfig uses cfg instead of loading it from the paths.
func WithConfig(cfg config.Config) Option {
	return func(c *Client) { c.cfg = cfg; c.cfgSet = true }
}

// WithUserHome sets the directory '~' expands to in configured model files.
// Defaults to the current user's home, independent of the agentd home.
func WithUserHome(dir string) Option { return func(c *Client) { c.userHome = dir } }

// New loads configuration under paths and returns a Client.
func New(paths config.Paths, opts ...Option) (*Client, error) {
	c := &Client{paths: paths, log: zerolog.Nop()}
	if h, err := os.UserHomeDir(); err == nil {
		c.userHome = h
	}
	for _, o := range opts {
		o(c)
	}
	if !c.cfgSet {
		cfg, err := config.Load(paths)
		if err != nil {
			return nil, err
		}
		c.cfg = cfg
	}
	c.resolver = registry.NewResolver(c.cfg.Models, paths.ModelsDir(), c.userHome)
	return c, nil
}

// Default is New with $AGENTD_HOME or ~/.agentd.
func Default(opts ...Option) (*Client, error) {
	p, err := config.DefaultPaths()
	if err != nil {
		return nil, errs.IO(err, "locate agentd home")
	}
	return New(p, opts...)
}

// Config returns the loaded configuration.
func (c *Client) Config() config.Config { return c.cfg }

// Paths returns the home layout the client was built with.
func (c *Client) Paths() config.Paths { return c.paths }

// Spec builds the default invocation for a model name.
func (c *Client) Spec(name string) (InvocationSpec, error) {
	path, err := c.resolver.Resolve(name)
	if err != nil {
		return InvocationSpec{}, err
	}
	entry, _, err := c.resolver.Lookup(name)
	if err != nil {
		return InvocationSpec{}, err
	}
	return llm.SpecFromConfig(c.cfg, path, &entry)
}

// Open resolves name and returns a backend with the configured default flags.
// An empty name opens the first available model.
func (c *Client) Open(name string) (Backend, error) {
	if strings.TrimSpace(name) == "" {
		first, err := c.FirstModel()
		if err != nil {
			return nil, err
		}
		name = first
	}
	spec, err := c.Spec(name)
	if err != nil {
		return nil, err
	}
	return c.NewBackend(spec)
}

// OpenWithArgs is Open with the flag list replaced by args.
func (c *Client) OpenWithArgs(name string, args []string) (Backend, error) {
	b, err := c.Open(name)
	if err != nil {
		return nil, err
	}
	return b.WithArgs(args), nil
}

// NewBackend builds the configured backend kind for spec.
func (c *Client) NewBackend(spec InvocationSpec) (Backend, error) {
	switch kind := strings.ToLower(strings.TrimSpace(c.cfg.Runtime.DefaultBackend)); kind {
	case "", llm.BackendLlamaCpp, "llama-cli", "llamacpp":
		return llm.NewLlamaCppBackend(spec,
			llm.WithLogger(c.log.With().Str("backend", llm.BackendLlamaCpp).Str("model", spec.ModelPath).Logger()),
			llm.WithRawOutput(c.cfg.Runtime.RawOutput),
			llm.WithTimeout(time.Duration(c.cfg.Runtime.TimeoutSeconds)*time.Second),
		)
	default:
		return nil, fmt.Errorf("unsupported backend %q", kind)
	}
}

// ListModels returns every model name, configured and discovered, sorted.
func (c *Client) ListModels() ([]string, error) { return c.resolver.Names() }

// Catalog returns configured then discovered models with availability.
func (c *Client) Catalog() ([]Model, error) { return c.resolver.Catalog() }

// Describe returns the catalog entry of one model.
func (c *Client) Describe(name string) (Model, error) { return c.resolver.Describe(name) }

// FirstModel returns the first model whose file exists, in catalog order.
func (c *Client) FirstModel() (string, error) {
	cat, err := c.resolver.Catalog()
	if err != nil {
		return "", err
	}
	for _, m := range cat {
		if m.Available {
			return m.Name, nil
		}
	}
	return "", errs.InvalidModelPath("no models available, download a model first")
}
