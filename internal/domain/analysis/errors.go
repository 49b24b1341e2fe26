package analysis

import "errors"

// ErrNoCredential indicates the provider credential was not configured at
// process start. Every analysis request fails with it until the deployment
// is fixed.
var ErrNoCredential = errors.New("server configuration error: provider API key is missing")

// ErrEmptyInput indicates the caller supplied no text to analyze.
var ErrEmptyInput = errors.New("no user input provided for analysis")

// ErrMalformedOutput indicates the provider returned text that does not parse
// as the requested JSON contract. Distinct from a provider outage: the call
// succeeded but the output broke the contract, so a retry may succeed.
var ErrMalformedOutput = errors.New("provider returned malformed analysis output")
