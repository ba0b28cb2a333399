// Package cli provides the interactive webfolio command-line client.
//
// It wires configuration, the credential store, API services, and an
// interactive REPL on top of the session controller. Typical flow: hydrate
// the saved session, start the background refresh and poll loops, and
// execute user commands until exit.
//
// Key features:
//   - Register / Login / Logout
//   - Profile show / edit, public profile lookup
//   - Device session listing and revocation
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
