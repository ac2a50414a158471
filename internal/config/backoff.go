package config

import "git.home.luguber.info/inful/docgraph/internal/foundation/normalization"

// RetryBackoff enumerates publish retry backoff modes.
type RetryBackoff string

const (
	RetryBackoffFixed       RetryBackoff = "fixed"
	RetryBackoffLinear      RetryBackoff = "linear"
	RetryBackoffExponential RetryBackoff = "exponential"
)

var retryBackoffs = normalization.New("retry backoff", map[string]RetryBackoff{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, RetryBackoffLinear)

func NormalizeRetryBackoff(raw string) RetryBackoff {
	return retryBackoffs.Normalize(raw)
}
