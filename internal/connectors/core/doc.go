// Package core imports mine permits and permit amendments from the CORE
// mines registry. Same pipeline shape as the nris package but with its own
// eligibility policy: the staleness threshold and type allow-list differ per
// agency and are kept separately configurable.
package core
