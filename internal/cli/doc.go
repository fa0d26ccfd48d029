// Package cli implements the ccdash command-line interface.
//
// Each Cobra command parses its flags, loads config (file, CCDASH_*
// environment, then flag overrides) and delegates to a plain function that
// takes its API dependency as a small interface, so the commands can be
// exercised against a test server.
//
// # Command Structure
//
//	ccdash                      - Dashboard (same as monitor)
//	ccdash monitor              - Full-screen health dashboard
//	ccdash status [device]      - Roster ranked by health, or one device's gauges
//	ccdash history <device>     - Samples oldest first with trend lines
//	ccdash export <device>      - History to an .xlsx workbook
//	ccdash transfer <file>...   - Send files to devices via the server
//	ccdash init                 - Write .ccdash.yaml
//	ccdash config set|path      - Edit or locate the active config
//	ccdash version              - Build information
//
// Errors are *errors.Error values printed by Execute; with --json they are
// wrapped in a JSONEnvelope instead.
package cli
