// Package s3 provides object storage for uploaded images on Amazon S3
// and S3-compatible services (MinIO, Wasabi, DigitalOcean Spaces).
//
// It wraps the AWS SDK v2 client with config-driven construction, error
// classification, and public URL generation supporting custom CDN base
// URLs and both path-style and virtual-hosted-style addressing.
package s3
