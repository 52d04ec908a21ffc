// Package extension provides the run-time registry that lets the client
// decode user-defined queue result payloads (for example outputs of custom
// nodes installed on the remote service).
//
// The registry is normally populated through the public options on the root
// package, therefore most applications do not need to import this package
// directly.
package extension
