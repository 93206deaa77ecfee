package clinic

import "errors"

var (
	ErrClinicNotFound   = errors.New("clinic not found")
	ErrDuplicateClinic  = errors.New("a clinic with this name already exists in this city")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrInvalidLocation  = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrClinicInUse      = errors.New("clinic has upcoming appointments")
)
