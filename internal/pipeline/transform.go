package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
	"github.com/couchcryptid/bike-rental-report/internal/report"
)

// DatasetBuilder implements Builder by normalizing every raw row into a
// report.Dataset.
type DatasetBuilder struct {
	logger *slog.Logger
}

// NewBuilder creates a DatasetBuilder.
func NewBuilder(logger *slog.Logger) *DatasetBuilder {
	return &DatasetBuilder{logger: logger}
}

func (b *DatasetBuilder) Build(raws []domain.RawRecord) (*report.Dataset, error) {
	ds, err := report.BuildDataset(raws)
	if err != nil {
		return nil, err
	}

	b.logger.Info("dataset normalized",
		"records", ds.Len(),
		"years", ds.Years(),
		"seasons", len(ds.Seasons()),
		"weathers", len(ds.Weathers()),
	)
	return ds, nil
}
