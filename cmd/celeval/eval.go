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
	"fmt"

	"github.com/spf13/cobra"

	celcore "github.com/google/cel-core"
	"github.com/google/cel-core/ast"
	"github.com/google/cel-core/attribute"
	"github.com/google/cel-core/interpreter"
	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

func newEvalCmd() *cobra.Command {
	var (
		bindingsPath  string
		schemaPairs   []string
		unknowns      []string
		trace         bool
		shortCircuit  bool
		maxIterations int
		maxDepth      int
	)
	cmd := &cobra.Command{
		Use:   "eval <ast.json>",
		Short: "Evaluate a checked expression against JSON bindings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadAST(args[0])
			if err != nil {
				return err
			}
			bindings, err := loadBindings(bindingsPath)
			if err != nil {
				return err
			}

			features := celcore.DefaultFeatures()
			features.EnableShortCircuiting = shortCircuit
			features.ComprehensionMaxIterations = maxIterations
			features.MaxParseRecursionDepth = maxDepth

			runtime, err := buildRuntime(cmd, schemaPairs, features)
			if err != nil {
				return err
			}
			program, err := runtime.Program(tree)
			if err != nil {
				return err
			}

			vars, err := activationWithUnknowns(runtime, bindings, unknowns)
			if err != nil {
				return err
			}

			var out ref.Val
			if trace {
				out, err = program.Trace(cmd.Context(), vars, func(expr *ast.Expr, value ref.Val) {
					fmt.Fprintf(cmd.ErrOrStderr(), "#%d %s => %s\n", expr.ID, expr.Kind, types.Format(value))
				})
			} else {
				out, err = program.Eval(cmd.Context(), vars)
			}
			if err != nil {
				return err
			}

			if u, isUnknown := out.(*types.Unknown); isUnknown {
				fmt.Fprintf(cmd.OutOrStdout(), "unknown: %s\n", u)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), types.Format(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&bindingsPath, "bindings", "b", "", "path to a JSON object of variable bindings")
	cmd.Flags().StringArrayVar(&schemaPairs, "schema", nil, "structured type as name=schema.json, repeatable")
	cmd.Flags().StringArrayVar(&unknowns, "unknown", nil, "attribute pattern to treat as unknown, repeatable")
	cmd.Flags().BoolVar(&trace, "trace", false, "print every sub-expression result to stderr")
	cmd.Flags().BoolVar(&shortCircuit, "short-circuit", true, "enable short-circuit evaluation")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", interpreter.DefaultComprehensionMaxIterations, "comprehension iteration budget")
	cmd.Flags().IntVar(&maxDepth, "max-depth", ast.DefaultMaxRecursionDepth, "expression recursion depth limit")
	return cmd
}

func activationWithUnknowns(runtime *celcore.Runtime, bindings map[string]any, unknowns []string) (interpreter.Activation, error) {
	base, err := interpreter.NewActivation(bindings, runtime.Adapter())
	if err != nil {
		return nil, err
	}
	if len(unknowns) == 0 {
		return base, nil
	}
	patterns := make([]attribute.Pattern, 0, len(unknowns))
	for _, u := range unknowns {
		pattern, err := attribute.ParsePattern(u)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}
	return interpreter.NewPartialActivation(base, interpreter.NewPartialResolver(patterns...)), nil
}
