// Package domain defines the canonical record model for the synchronization
// pipeline: master records, audience flavours, attachment documents, import
// windows and task audit state.
//
// The domain layer has no dependencies on adapters or upstream systems; it is
// pure data plus the business rules that travel with it (anonymity
// classification, window planning, patch construction).
package domain
