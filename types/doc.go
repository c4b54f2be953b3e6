// Package types provides unified type definitions for the Agora debate
// engine.
//
// The types package is the lowest-level package with no internal
// dependencies, so every other package (engine, store, research, factcheck)
// can share these definitions without circular imports.
package types
