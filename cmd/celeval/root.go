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

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	celcore "github.com/google/cel-core"
	"github.com/google/cel-core/ast"
	"github.com/google/cel-core/schema"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "celeval",
		Short:         "Evaluate checked CEL expression trees",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	registerLoggingFlags(cmd)
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		logger, err := getBaseLogger(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(slogctx.NewCtx(cmd.Context(), logger))
		return nil
	}
	cmd.AddCommand(newEvalCmd())
	cmd.AddCommand(newInspectCmd())
	return cmd
}

// loadAST reads a checked AST from its JSON wire form.
func loadAST(path string) (*ast.AST, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ast file: %w", err)
	}
	var tree ast.AST
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode ast file %q: %w", path, err)
	}
	return &tree, nil
}

// loadBindings reads a JSON object of variable bindings.
func loadBindings(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bindings file: %w", err)
	}
	var bindings map[string]any
	if err := json.Unmarshal(data, &bindings); err != nil {
		return nil, fmt.Errorf("failed to decode bindings file %q: %w", path, err)
	}
	return bindings, nil
}

// loadSchemas compiles `name=path` schema flags into a provider.
func loadSchemas(pairs []string, features celcore.Features) (*schema.Provider, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	declTypes := make([]*schema.DeclType, 0, len(pairs))
	for _, pair := range pairs {
		name, path, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid schema flag %q, expected name=path", pair)
		}
		schemaJSON, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		declType, err := schema.CompileType(name, string(schemaJSON))
		if err != nil {
			return nil, err
		}
		declTypes = append(declTypes, declType)
	}
	return schema.NewProvider(declTypes,
		schema.WithNaNFieldEquality(!features.EnableProtoDifferencerEquality)), nil
}

// buildRuntime assembles runtime options shared by the subcommands.
func buildRuntime(cmd *cobra.Command, schemaPairs []string, features celcore.Features) (*celcore.Runtime, error) {
	opts := []celcore.RuntimeOption{celcore.WithFeatures(features)}
	provider, err := loadSchemas(schemaPairs, features)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		opts = append(opts, celcore.WithTypeProvider(provider))
	}
	logger, err := getBaseLogger(cmd)
	if err != nil {
		return nil, err
	}
	opts = append(opts, celcore.WithLogger(logger))
	return celcore.NewRuntime(opts...)
}
