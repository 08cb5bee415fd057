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

// Package armerr holds the error vocabulary the discovery engine raises:
// the ARM-style CloudError/CloudErrorBody pair used to decode a provider's
// own {error:{code,message}} envelope, and the small set of engine-specific
// error kinds callers branch on with errors.As.
package armerr

import (
	"fmt"
)

// CloudError codes recognized when decoding a non-200 provider response.
const (
	CloudErrorCodeInternalServerError    = "InternalServerError"
	CloudErrorCodeMultipleErrorsOccurred = "MultipleErrorsOccurred"
	CloudErrorCodeResourceNotFound       = "ResourceNotFound"
	CloudErrorCodeResourceGroupNotFound  = "ResourceGroupNotFound"
	CloudErrorCodeSubscriptionNotFound   = "SubscriptionNotFound"
	CloudErrorCodeAuthorizationFailed    = "AuthorizationFailed"
	CloudErrorCodeForbidden              = "Forbidden"
)

// CloudError represents a decoded resource-provider error response.
type CloudError struct {
	// StatusCode is the HTTP status code the provider responded with.
	StatusCode int `json:"-"`

	*CloudErrorBody `json:"error,omitempty"`
}

func (err *CloudError) Error() string {
	var body string

	if err.CloudErrorBody != nil {
		body = ": " + err.String()
	}

	return fmt.Sprintf("%d%s", err.StatusCode, body)
}

// CloudErrorBody represents the structure of the response body for a resource provider error.
// See https://github.com/cloud-and-ai-microsoft/resource-provider-contract/blob/master/v1.0/common-api-details.md#error-response-content
type CloudErrorBody struct {
	// Code is an identifier for the error. Codes are invariant and intended to be consumed programmatically.
	Code string `json:"code,omitempty"`

	// Message describes the error, suitable for display in a user interface.
	Message string `json:"message,omitempty"`

	// Target is the target of the particular error, e.g. the name of an offending property.
	Target string `json:"target,omitempty"`

	// Details holds additional nested errors.
	Details []CloudErrorBody `json:"details,omitempty"`
}

// NewCloudErrorBodyFromSlice converts a CloudErrorBody slice to a single CloudErrorBody.
// If there is only one item in the provided slice, that item is returned directly. If
// there are multiple items, a CloudErrorBody is returned with code "MultipleErrorsOccurred"
// and Details set to the provided slice. An empty slice returns nil.
func NewCloudErrorBodyFromSlice(errors []CloudErrorBody, multipleErrorsMessage string) *CloudErrorBody {
	switch len(errors) {
	case 0:
		return nil
	case 1:
		return &errors[0]
	default:
		return &CloudErrorBody{
			Code:    CloudErrorCodeMultipleErrorsOccurred,
			Message: multipleErrorsMessage,
			Details: errors,
		}
	}
}

func (body *CloudErrorBody) String() string {
	out := fmt.Sprintf("%s: ", body.Code)
	if len(body.Target) > 0 {
		out += fmt.Sprintf("%s: ", body.Target)
	}
	out += body.Message

	if len(body.Details) > 0 {
		out += " Details: "
		for i, innerErr := range body.Details {
			out += innerErr.String()
			if i < len(body.Details)-1 {
				out += ", "
			}
		}
	}

	return out
}

// NewCloudError returns a new CloudError.
func NewCloudError(statusCode int, code, target, format string, a ...interface{}) *CloudError {
	return &CloudError{
		StatusCode: statusCode,
		CloudErrorBody: &CloudErrorBody{
			Code:    code,
			Message: fmt.Sprintf(format, a...),
			Target:  target,
		},
	}
}
