package provider

import "errors"

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrClinicNotFound   = errors.New("clinic not found")
	ErrInvalidService   = errors.New("one or more services do not exist at the provider's clinic")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrProviderInUse    = errors.New("provider has upcoming appointments")
)
