// Package gcs provides a Google Cloud Storage implementation of driven.BlobStore
// using the generated google.golang.org/api/storage/v1 client.
//
// Credentials come from a service account JSON file when one is configured,
// otherwise from Application Default Credentials. Both are resolved through
// golang.org/x/oauth2/google and passed as an oauth2.TokenSource.
package gcs
