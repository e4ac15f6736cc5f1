// Package gauge implements the ASCII command/response protocol of the
// Kurt J. Lesker 354 ionisation gauge and its two convection gauge channels.
//
// A command frame is '#' + address + mnemonic + CR. A well-formed reply is
// '*' + address + ' ' + decimal pressure in Torr. Each Transact call is one
// paced, retry-free exchange:
//
//	reset input, reset output, sleep Before, write frame, sleep After, read line
//
// The settling delays are required by the instrument's turnaround time.
// They run on a clock.Clock so tests can drive them with a mock clock.
//
// Channel reads never return errors. A failed exchange or malformed reply
// becomes a Result carrying one of the package's sentinel errors, so callers
// can tell a timeout from an address mismatch with errors.Is.
package gauge
