// Package cli implements the userbook command line: a cobra command tree
// whose default action is an interactive numbered menu, plus one-shot
// add, list, update and delete subcommands.
//
// The package owns operator I/O only. Every record operation is delegated to
// services.UserStore, and operator messages are chosen from the returned
// errors with errors.Is.
package cli
