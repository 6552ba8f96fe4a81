// Package endpoint defines the logical destinations a connection can be made
// to and decides, without any I/O, how each one must be reached.
package endpoint
