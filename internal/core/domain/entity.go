package domain

import "strings"

// EntityType distinguishes who a record was issued to.
type EntityType string

const (
	// EntityCompany is an organizational entity.
	EntityCompany EntityType = "Company"

	// EntityIndividual is a natural person.
	EntityIndividual EntityType = "Individual"

	// EntityIndividualCombined is a combined-name individual, used by
	// upstream systems that carry a single unsplit name field.
	EntityIndividualCombined EntityType = "IndividualCombined"
)

// Entity is the party a record was issued against.
type Entity struct {
	Type EntityType

	// CompanyName is set for EntityCompany.
	CompanyName string

	// FirstName, MiddleName and LastName are set for EntityIndividual.
	FirstName  string
	MiddleName string
	LastName   string

	// FullName is set for EntityIndividualCombined.
	FullName string
}

// DisplayName returns the presentation name for the entity.
func (e Entity) DisplayName() string {
	switch e.Type {
	case EntityCompany:
		return e.CompanyName
	case EntityIndividualCombined:
		return e.FullName
	case EntityIndividual:
		parts := make([]string, 0, 3)
		for _, p := range []string{e.FirstName, e.MiddleName, e.LastName} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// IsAnonymous reports whether the entity classifies as an anonymous
// individual under the personal-data rule: an individual with no name fields
// set. Flavours and documents owned by an anonymous record must not be
// publicly readable.
func (e Entity) IsAnonymous() bool {
	switch e.Type {
	case EntityIndividual:
		return e.FirstName == "" && e.MiddleName == "" && e.LastName == ""
	case EntityIndividualCombined:
		return e.FullName == ""
	}
	return false
}
