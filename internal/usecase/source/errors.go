// Package source resolves which configured news sources take part in an
// aggregation call.
package source

import "errors"

// ErrSourceNotFound indicates that no source carries the requested ID.
var ErrSourceNotFound = errors.New("source not found")
