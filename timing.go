package loom

// TimingMode controls how much resolution work gets wrapped in go-timing
// contexts.
type TimingMode int

const (
	// TimingDisable turns timing off entirely.
	TimingDisable TimingMode = iota

	// TimingWarm wraps Warm's eager resolution pass in a single timing
	// context so warm-up cost shows up as one location.
	TimingWarm

	// TimingInitializers additionally wraps every initializer invocation
	// in its own timing context. This surfaces where resolution time is
	// actually spent and effectively records the construction tree, at
	// the cost of a timing allocation per initializer run.
	TimingInitializers
)

// EnableTiming selects the timing mode for all modules in the process.
// There needs to be a timing context already on the context, typically
// from timing.Root, for the captured locations to land anywhere useful.
var EnableTiming = TimingDisable
