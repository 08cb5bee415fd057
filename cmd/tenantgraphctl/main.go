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

// Command tenantgraphctl is a demo composition root for the tenantgraph
// discovery engine: it wires an authenticated ARM transport and prints the
// resulting StateNode records to stdout.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, err := NewCommand()
	if err != nil {
		logr.FromSlogHandler(slog.NewJSONHandler(os.Stderr, nil)).Error(err, "failed to build command")
		os.Exit(1)
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		logr.FromSlogHandler(slog.NewJSONHandler(os.Stderr, nil)).Error(err, "command failed")
		os.Exit(1)
	}
}
