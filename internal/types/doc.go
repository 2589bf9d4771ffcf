// Package types holds the data structures shared by the command surface:
// tool definitions, execution context and results.
package types
