package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		entity   Entity
		expected string
	}{
		{"company", Entity{Type: EntityCompany, CompanyName: "Acme Mining Ltd."}, "Acme Mining Ltd."},
		{"full individual", Entity{Type: EntityIndividual, FirstName: "Jane", MiddleName: "Q", LastName: "Doe"}, "Jane Q Doe"},
		{"individual without middle name", Entity{Type: EntityIndividual, FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		{"combined", Entity{Type: EntityIndividualCombined, FullName: "Jane Doe"}, "Jane Doe"},
		{"unset type", Entity{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entity.DisplayName())
		})
	}
}

func TestEntityIsAnonymous(t *testing.T) {
	assert.False(t, Entity{Type: EntityCompany}.IsAnonymous(), "companies are never anonymous")
	assert.False(t, Entity{Type: EntityIndividual, LastName: "Doe"}.IsAnonymous())
	assert.True(t, Entity{Type: EntityIndividual}.IsAnonymous())
	assert.True(t, Entity{Type: EntityIndividualCombined}.IsAnonymous())
	assert.False(t, Entity{Type: EntityIndividualCombined, FullName: "Jane Doe"}.IsAnonymous())
	assert.False(t, Entity{}.IsAnonymous(), "unresolved entities default to not anonymous")
}
