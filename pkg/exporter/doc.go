// Package exporter runs one export of saved posts end to end.
//
// A run moves through fixed stages:
//
//	idle -> authenticated -> listed -> filtering -> downloading -> finalizing -> done
//
// Cancelling the context during downloading moves the run to cancelled once
// the post in flight has finished. A cancelled run still saves the ledger so
// progress survives, but no archive is written.
//
// Progress is published as Event values; a presentation layer reads the
// channel returned by Start and never touches exporter state.
package exporter
