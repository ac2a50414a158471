package build

import "errors"

// Sentinel stage errors. They are always wrapped with context at the call site.
var (
	ErrGenerate = errors.New("docgraph: generate error")
	ErrPersist  = errors.New("docgraph: persist error")
)
