package printer

import "github.com/slok/jobwatch/internal/model"

// Printer knows how to print journal information in different formats.
type Printer interface {
	PrintHistory(records []model.Record) error
	PrintMessage(msg string) error
}
