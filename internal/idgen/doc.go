// Package idgen issues the opaque string identifiers stamped on submissions
// and cached documents.  Callers must not parse them.
package idgen
