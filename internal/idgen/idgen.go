package idgen

import "github.com/google/uuid"

// NewFunc generates identifiers; tests may stub it for stable run IDs
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier
func New() string { return NewFunc() }
