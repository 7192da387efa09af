// Package app is the composition root: it wires the logger, the
// executor registry, the description loaders, and the scheduler into a
// runnable application with a stable exit-code contract.
package app
