package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPQCodeHelpers(t *testing.T) {
	unique := fmt.Errorf("insert clinic: %w", &pq.Error{Code: CodeUniqueViolation, Constraint: "clinics_name_city_key"})
	exclusion := &pq.Error{Code: CodeExclusionViolation}
	fk := &pq.Error{Code: CodeForeignKeyViolation}

	assert.True(t, IsUniqueViolation(unique))
	assert.Equal(t, "clinics_name_city_key", Constraint(unique))
	assert.True(t, IsExclusionViolation(exclusion))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsCheckViolation(errors.New("plain")))
	assert.Equal(t, "", PQCode(nil))
}
