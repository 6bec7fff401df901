package s3

import "github.com/aws/aws-sdk-go-v2/feature/s3/manager"

type options struct {
	prefix      string
	region      string
	endpoint    string
	pathStyle   bool
	partSize    int64
	concurrency int
}

func defaultOptions() options {
	return options{
		partSize:    manager.DefaultDownloadPartSize,
		concurrency: manager.DefaultDownloadConcurrency,
	}
}

// Option configures a Store.
type Option func(*options)

// WithPrefix sets the key prefix prepended to all names.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region of the default AWS configuration.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the client at an S3-compatible endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithPathStyle enables path-style addressing.
func WithPathStyle(enabled bool) Option {
	return func(o *options) { o.pathStyle = enabled }
}

// WithDownload tunes whole-object downloads: part size in bytes and the
// number of parts fetched concurrently.
func WithDownload(partSize int64, concurrency int) Option {
	return func(o *options) {
		if partSize > 0 {
			o.partSize = partSize
		}
		if concurrency > 0 {
			o.concurrency = concurrency
		}
	}
}
