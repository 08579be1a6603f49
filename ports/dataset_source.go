package ports

import (
	"context"

	"segstats/domain/dataset"
)

// DatasetSource supplies the customer table the analyses run over
type DatasetSource interface {
	Load(ctx context.Context) (*dataset.Table, error)
}
