package raptor

// Config tunes the worker independently of any request: the round cap,
// the trip-search linear/binary crossover, the board-slack safety margin
// and the range-raptor outer-loop step, each with the default named in §6.
type Config struct {
	MaxRounds             int
	BinarySearchThreshold int
	BoardSlackSeconds     int
	IterationStepSeconds  int
}

// Option configures a Config via NewConfig.
type Option func(*Config)

// WithMaxRounds caps the number of transit rounds a search may use.
func WithMaxRounds(n int) Option {
	return func(c *Config) { c.MaxRounds = n }
}

// WithBinarySearchThreshold sets the trip-count above which TripSearch
// switches from a linear scan to a binary search.
func WithBinarySearchThreshold(n int) Option {
	return func(c *Config) { c.BinarySearchThreshold = n }
}

// WithBoardSlackSeconds sets the minimum dwell time required to board a
// trip after arriving at a stop.
func WithBoardSlackSeconds(n int) Option {
	return func(c *Config) { c.BoardSlackSeconds = n }
}

// WithIterationStepSeconds sets the range-raptor outer-loop departure
// (or arrival) minute step.
func WithIterationStepSeconds(n int) Option {
	return func(c *Config) { c.IterationStepSeconds = n }
}

// DefaultConfig returns the §6 tuning defaults: 12 rounds, a 50-trip
// linear/binary crossover, no board slack, and a 60-second iteration step.
func DefaultConfig() Config {
	return Config{
		MaxRounds:             12,
		BinarySearchThreshold: 50,
		BoardSlackSeconds:     0,
		IterationStepSeconds:  60,
	}
}

// NewConfig builds a Config from DefaultConfig plus the given options.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
