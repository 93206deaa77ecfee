package report

import "errors"

var ErrInvalidPeriod = errors.New("from must be before to and the range may not exceed 366 days")
