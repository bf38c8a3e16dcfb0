// Package retry provides exponential backoff retry logic for transient failures.
//
// It is used only for the tool's own AWS API calls (STS, S3). Declared
// resources and release pipeline stages are never retried.
package retry
