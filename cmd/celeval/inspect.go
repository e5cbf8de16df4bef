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

	"github.com/spf13/cobra"

	"github.com/google/cel-core/inspect"
)

func newInspectCmd() *cobra.Command {
	var (
		identifiers []string
		funcs       []string
	)
	cmd := &cobra.Command{
		Use:   "inspect <ast.json>",
		Short: "Report identifiers and functions referenced by an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadAST(args[0])
			if err != nil {
				return err
			}
			inspector := inspect.NewInspector(identifiers, funcs)
			result := inspector.Inspect(tree)

			out := inspectOutput{}
			for _, dep := range result.Dependencies {
				out.Dependencies = append(out.Dependencies, dep.Path.String())
			}
			for _, call := range result.FunctionCalls {
				out.FunctionCalls = append(out.FunctionCalls, call.Name)
			}
			for _, unknown := range result.UnknownIdentifiers {
				out.UnknownIdentifiers = append(out.UnknownIdentifiers, unknown.Path.String())
			}
			for _, unknown := range result.UnknownFunctions {
				out.UnknownFunctions = append(out.UnknownFunctions, unknown.Name)
			}

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&identifiers, "identifier", nil, "declared input identifier, repeatable")
	cmd.Flags().StringArrayVar(&funcs, "function", nil, "declared custom function, repeatable")
	return cmd
}

type inspectOutput struct {
	Dependencies       []string `json:"dependencies,omitempty"`
	FunctionCalls      []string `json:"functionCalls,omitempty"`
	UnknownIdentifiers []string `json:"unknownIdentifiers,omitempty"`
	UnknownFunctions   []string `json:"unknownFunctions,omitempty"`
}
