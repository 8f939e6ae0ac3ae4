// Package partnersync defines the domain model for synchronizing account
// master data to the external partner system: the customer command wire
// shapes, validation and sync result types, the normalized response envelope,
// and the correlation strategy used to reconcile partner-generated
// identifiers back onto local records.
package partnersync
