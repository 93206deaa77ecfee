package catalog

import "errors"

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrDuplicateService = errors.New("a service with this name already exists at this clinic")
	ErrClinicNotFound   = errors.New("clinic not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)
