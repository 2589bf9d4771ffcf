// Package common holds the result constructors, parameter accessors and
// rendering helpers shared by the math tool modules.
//
// Every tool follows the same contract: bad input is never a Go error, it is
// a failed Result whose message starts with "Error: " and can be shown to the
// user as is. Go errors are reserved for failures of the bot itself.
package common
