// Package handover models the short-lived numeric codes that authorise a
// physical custody transfer. The party about to receive custody displays its
// code, the counterparty submits it, and a match is consumed exactly once.
package handover
