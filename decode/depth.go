package decode

// MaxDepth is the hard nesting bound for any decode. Limits configured
// through WithMaxDepth are clamped to it.
const MaxDepth = 512

// Options configures a decode entry point.
type Options struct {
	MaxDepth int
}

// Option mutates Options.
type Option func(*Options)

// WithMaxDepth lowers the nesting limit. Values <= 0 or above MaxDepth
// select MaxDepth.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// Apply returns the effective options.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	o.MaxDepth = clampDepth(o.MaxDepth)
	return o
}

func clampDepth(n int) int {
	if n <= 0 || n > MaxDepth {
		return MaxDepth
	}
	return n
}

// Depth returns the maximum object/array nesting of data. Scalars have
// depth 0. It does not validate data.
func Depth(data []byte) int {
	depth, maxDepth := 0, 0
	inString, escaped := false, false

	for _, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}', ']':
			depth--
		}
	}
	return maxDepth
}

// CheckDepth fails with ErrRecursionLimit when data nests deeper than limit.
func CheckDepth(target string, data []byte, limit int) error {
	limit = clampDepth(limit)
	if d := Depth(data); d > limit {
		return TooDeep(target, d, limit)
	}
	return nil
}
