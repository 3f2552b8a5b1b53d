// Package nris imports compliance inspections from the Natural Resource
// Inspection System (EPD export). It owns the source-specific pieces of the
// pipeline: token acquisition, windowed fetch, eligibility rules, the
// transform into canonical records and attachment download handles.
package nris
