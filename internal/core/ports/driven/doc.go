// Package driven defines the outbound ports of the pipeline: the record,
// document and audit stores it persists into, and the upstream record
// sources it pulls from. Adapters implement these interfaces.
package driven
