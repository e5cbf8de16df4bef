// Copyright 2025 The Kubernetes Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package celcore is the embedded expression runtime: it evaluates
// checked CEL expression trees against caller-supplied bindings. A
// Runtime is built once from a structured-type provider, function
// bindings, and feature flags, then turns checked ASTs into Programs
// that evaluate concurrently.
package celcore

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/cel-core/functions"
	"github.com/google/cel-core/interpreter"
	"github.com/google/cel-core/types"
)

// Runtime is the immutable evaluation engine produced by NewRuntime.
type Runtime struct {
	features   Features
	dispatcher *interpreter.Dispatcher
	interp     *interpreter.Interpreter
	provider   types.Provider
	adapter    types.Adapter
	listener   interpreter.EvalListener
	logger     *slog.Logger
}

type runtimeConfig struct {
	features Features
	provider types.Provider
	bindings map[string][]*functions.Overload
	include  []string
	exclude  []string
	listener interpreter.EvalListener
	logger   *slog.Logger
}

// RuntimeOption configures runtime construction.
type RuntimeOption func(*runtimeConfig) error

// WithTypeProvider supplies the structured-type provider consulted for
// struct construction, field access, and native value adaptation.
func WithTypeProvider(p types.Provider) RuntimeOption {
	return func(c *runtimeConfig) error {
		if p == nil {
			return fmt.Errorf("type provider must not be nil")
		}
		c.provider = p
		return nil
	}
}

// WithFeatures replaces the default feature flags.
func WithFeatures(f Features) RuntimeOption {
	return func(c *runtimeConfig) error {
		c.features = f
		return nil
	}
}

// WithFunctions registers custom function bindings as the
// engine-registered dispatch layer.
func WithFunctions(bindings map[string][]*functions.Overload) RuntimeOption {
	return func(c *runtimeConfig) error {
		if c.bindings == nil {
			c.bindings = map[string][]*functions.Overload{}
		}
		for name, overloads := range bindings {
			c.bindings[name] = append(c.bindings[name], overloads...)
		}
		return nil
	}
}

// WithStandardInclude restricts the standard library to the named
// functions.
func WithStandardInclude(names ...string) RuntimeOption {
	return func(c *runtimeConfig) error {
		c.include = append(c.include, names...)
		return nil
	}
}

// WithStandardExclude removes the named functions from the standard
// library.
func WithStandardExclude(names ...string) RuntimeOption {
	return func(c *runtimeConfig) error {
		c.exclude = append(c.exclude, names...)
		return nil
	}
}

// WithEvalListener installs a listener observing every sub-expression
// result of every evaluation run through this runtime.
func WithEvalListener(l interpreter.EvalListener) RuntimeOption {
	return func(c *runtimeConfig) error {
		c.listener = l
		return nil
	}
}

// WithLogger attaches a logger used by the tracing surface; the
// evaluator itself never logs.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(c *runtimeConfig) error {
		c.logger = logger
		return nil
	}
}

// NewRuntime builds an immutable runtime from the given options.
func NewRuntime(opts ...RuntimeOption) (*Runtime, error) {
	cfg := runtimeConfig{features: DefaultFeatures()}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	standard := functions.Standard(cfg.features.standardOptions())
	for name := range standard {
		if len(cfg.include) > 0 && !slices.Contains(cfg.include, name) && !isOperator(name) {
			delete(standard, name)
			continue
		}
		if slices.Contains(cfg.exclude, name) {
			delete(standard, name)
		}
	}

	dispatcher := interpreter.NewDispatcher(standard)
	if cfg.bindings != nil {
		if err := dispatcher.Register(cfg.bindings); err != nil {
			return nil, fmt.Errorf("invalid function bindings: %w", err)
		}
	}

	adapter := types.DefaultAdapter
	if !cfg.features.EnableUnsignedLongs {
		adapter = types.SignedAdapter
	}

	interpOpts := []interpreter.Option{
		interpreter.WithShortCircuit(cfg.features.EnableShortCircuiting),
		interpreter.WithMaxRecursionDepth(cfg.features.MaxParseRecursionDepth),
		interpreter.WithComprehensionMaxIterations(cfg.features.ComprehensionMaxIterations),
		interpreter.WithAdapter(adapter),
	}
	if cfg.provider != nil {
		interpOpts = append(interpOpts, interpreter.WithProvider(cfg.provider))
	}

	return &Runtime{
		features:   cfg.features,
		dispatcher: dispatcher,
		interp:     interpreter.NewInterpreter(dispatcher, interpOpts...),
		provider:   cfg.provider,
		adapter:    adapter,
		listener:   cfg.listener,
		logger:     cfg.logger,
	}, nil
}

// Features returns the flags the runtime was built with.
func (r *Runtime) Features() Features {
	return r.features
}

// Adapter returns the value adapter used for activation bindings: the
// provider when one is configured, the native adapter otherwise.
func (r *Runtime) Adapter() types.Adapter {
	if r.provider != nil {
		return r.provider
	}
	return r.adapter
}

// isOperator reports whether the function symbol is an operator form;
// operators survive include-filtering since expressions cannot be
// evaluated without them.
func isOperator(name string) bool {
	return len(name) > 0 && (name[0] == '_' || name[0] == '!' || name[0] == '-' || name[0] == '@')
}
