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

package azsdk

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

const moduleVersion = "v0.1.0"

// PipelineTransport satisfies the tenantgraph engine's transport primitive
// (SendRequest(method, path) -> statusCode, body) over the same generic ARM
// request pipeline every generated armXXX client builds on. Using arm.NewClient
// means retry, throttling and bearer-token auth policies come from the SDK
// instead of being reimplemented around a bare http.Client.
type PipelineTransport struct {
	client *arm.Client
	host   string
}

// NewPipelineTransport builds a PipelineTransport authenticated with cred.
// cloudEndpoint is the ARM resource-manager endpoint, e.g.
// "https://management.azure.com" for public cloud.
func NewPipelineTransport(
	cred azcore.TokenCredential,
	component Component,
	cloudEndpoint string,
	opts *arm.ClientOptions,
) (*PipelineTransport, error) {
	if opts == nil {
		opts = &arm.ClientOptions{}
	}
	opts.ClientOptions = NewClientOptions(component)

	client, err := arm.NewClient(fmt.Sprintf("tenantgraph.%s", component), moduleVersion, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("building ARM pipeline client: %w", err)
	}

	return &PipelineTransport{client: client, host: cloudEndpoint}, nil
}

// SendRequest issues method against host+path through the ARM pipeline and
// returns the raw status code and response body. The engine decides what the
// body means; this layer only moves bytes.
func (t *PipelineTransport) SendRequest(ctx context.Context, method, path string) (int, []byte, error) {
	req, err := runtime.NewRequest(ctx, method, t.host+path)
	if err != nil {
		return 0, nil, fmt.Errorf("building request for %s: %w", path, err)
	}

	resp, err := t.client.Pipeline().Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request for %s: %w", path, err)
	}

	body, err := runtime.Payload(resp)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body for %s: %w", path, err)
	}

	return resp.StatusCode, body, nil
}
