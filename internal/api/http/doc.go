// Package http implements the ops API handlers: health, tool listing and
// tool execution without going through Discord.
package http
