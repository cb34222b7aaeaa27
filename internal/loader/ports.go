package loader

import "context"

// ObjectStore is the outbound port to wherever the CSV exports live.
type ObjectStore interface {
	// List returns the keys of every CSV object under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Read returns the raw bytes of one object.
	Read(ctx context.Context, key string) ([]byte, error)
}
