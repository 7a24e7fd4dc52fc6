// Package s3 provides an Amazon S3 implementation of driven.BlobStore on
// aws-sdk-go-v2. Credentials and region are resolved through the standard
// AWS configuration chain.
package s3
