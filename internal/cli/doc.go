// Package cli handles command-line argument parsing and the process exit
// code contract: 0 for a successful run, 1 for a run that failed, 2 for
// a malformed matrix description or bad usage.
package cli
