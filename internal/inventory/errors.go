package inventory

import "errors"

var (
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrDuplicateSKU      = errors.New("an item with this SKU already exists in the clinic")
	ErrClinicNotFound    = errors.New("clinic not found")
	ErrInsufficientStock = errors.New("adjustment would make stock negative")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrQuantityTooLarge  = errors.New("stock quantity exceeds the supported range")
)
