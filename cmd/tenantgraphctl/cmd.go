// Copyright 2025 Microsoft Corporation
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
	"log/slog"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// NewCommand builds the "discover" command: it walks a tenant's resource
// tree starting from the configured roots and, once the traversal finishes,
// prints one StateNode per line to stdout.
func NewCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:           "discover",
		Short:         "Walk an Azure tenant's management group, subscription and resource hierarchy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts := DefaultOptions()
	if err := opts.BindOptions(cmd); err != nil {
		return nil, fmt.Errorf("failed to bind options: %w", err)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger := logr.FromSlogHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.Level(opts.LogVerbosity * -1),
		}))
		ctx := logr.NewContext(cmd.Context(), logger)

		validated, err := opts.Validate()
		if err != nil {
			return err
		}
		completed, err := validated.Complete(ctx)
		if err != nil {
			return err
		}
		return completed.Run(ctx)
	}

	return cmd, nil
}
