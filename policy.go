package moor

import (
	"math/rand"
	"time"
)

// DelaySequence is a fresh, stateful generator of reconnect delays starting
// at attempt 0. Policies that need no state between attempts (constant,
// linear, exponential) still hand out a DelaySequence so that jittered
// policies share the same calling convention.
type DelaySequence interface {
	// Next returns the delay for the next attempt and advances the
	// sequence's internal attempt counter.
	Next() time.Duration
}

// RecoveryPolicy is a pure description of reconnect cadence: a retry-count
// bound and a generator of delay sequences. Two DelaySequence values
// produced by the same RecoveryPolicy, each read from attempt 0, yield
// identical delays.
type RecoveryPolicy interface {
	// RetryCount reports the effective attempt bound. unbounded is true
	// when there is no cap (the supervisor retries forever).
	RetryCount() (count int, unbounded bool)
	// FastFirst reports whether attempt 0 has a zero delay.
	FastFirst() bool
	// NewSequence returns a fresh DelaySequence starting at attempt 0.
	NewSequence() DelaySequence
}

// Delays materializes the first n delays of a fresh sequence from p. Used
// by tests to assert exact reference sequences (spec.md §4.1, §8).
func Delays(p RecoveryPolicy, n int) []time.Duration {
	seq := p.NewSequence()
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = seq.Next()
	}
	return out
}

func validateCommon(initial time.Duration, retryCount int, max time.Duration, maxSet bool) error {
	if initial < 0 {
		return newConfigError("initial", "initial delay must be non-negative")
	}
	if retryCount < Unbounded {
		return newConfigError("retryCount", "retry count must be non-negative, or Unbounded")
	}
	if maxSet && max < initial {
		return newConfigError("max", "max delay must not be less than initial delay")
	}
	return nil
}

// -- Constant -----------------------------------------------------------

type constantPolicy struct {
	delay      time.Duration
	retryCount int
	unbounded  bool
	fastFirst  bool
}

// NewConstantPolicy returns a policy whose delay is always `delay`, except
// that attempt 0 is zero when fastFirst is set. Any retryCount below
// Unbounded is rejected; pass Unbounded itself for an uncapped policy.
func NewConstantPolicy(delay time.Duration, retryCount int, fastFirst bool) (RecoveryPolicy, error) {
	if err := validateCommon(delay, retryCount, 0, false); err != nil {
		return nil, err
	}
	return &constantPolicy{
		delay:      delay,
		retryCount: retryCount,
		unbounded:  retryCount == Unbounded,
		fastFirst:  fastFirst,
	}, nil
}

func (p *constantPolicy) RetryCount() (int, bool) { return p.retryCount, p.unbounded }
func (p *constantPolicy) FastFirst() bool         { return p.fastFirst }
func (p *constantPolicy) NewSequence() DelaySequence {
	return &pureSequence{fn: func(attempt int) time.Duration {
		if p.fastFirst && attempt == 0 {
			return 0
		}
		return p.delay
	}}
}

// -- Linear ---------------------------------------------------------------

type linearPolicy struct {
	initial    time.Duration
	max        time.Duration
	maxSet     bool
	factor     float64
	retryCount int
	unbounded  bool
	fastFirst  bool
}

// NewLinearPolicy returns a policy where delay(i) = min(initial*(1+factor*i),
// max). max of 0 means unbounded; factor must be >= 1.
func NewLinearPolicy(initial time.Duration, max time.Duration, factor float64, retryCount int, fastFirst bool) (RecoveryPolicy, error) {
	maxSet := max > 0
	if err := validateCommon(initial, retryCount, max, maxSet); err != nil {
		return nil, err
	}
	if factor < 1 {
		return nil, newConfigError("factor", "factor must be >= 1")
	}
	return &linearPolicy{
		initial:    initial,
		max:        max,
		maxSet:     maxSet,
		factor:     factor,
		retryCount: retryCount,
		unbounded:  retryCount == Unbounded,
		fastFirst:  fastFirst,
	}, nil
}

func (p *linearPolicy) RetryCount() (int, bool) { return p.retryCount, p.unbounded }
func (p *linearPolicy) FastFirst() bool         { return p.fastFirst }
func (p *linearPolicy) NewSequence() DelaySequence {
	return &pureSequence{fn: func(attempt int) time.Duration {
		if p.fastFirst && attempt == 0 {
			return 0
		}
		d := time.Duration(float64(p.initial) * (1 + p.factor*float64(attempt)))
		if p.maxSet && d > p.max {
			return p.max
		}
		return d
	}}
}

// -- Exponential ------------------------------------------------------------

type exponentialPolicy struct {
	initial    time.Duration
	max        time.Duration
	maxSet     bool
	factor     float64
	retryCount int
	unbounded  bool
	fastFirst  bool
}

// NewExponentialPolicy returns a policy where delay(i) = min(initial*factor^i,
// max). When fastFirst is set, delay(0) = 0 and delay(i) = min(initial*
// factor^(i-1), max) for i >= 1 — the first real attempt pays `initial`, not
// `initial*factor`. factor must be >= 1; max of 0 means unbounded.
func NewExponentialPolicy(initial time.Duration, max time.Duration, factor float64, retryCount int, fastFirst bool) (RecoveryPolicy, error) {
	maxSet := max > 0
	if err := validateCommon(initial, retryCount, max, maxSet); err != nil {
		return nil, err
	}
	if factor < 1 {
		return nil, newConfigError("factor", "factor must be >= 1")
	}
	return &exponentialPolicy{
		initial:    initial,
		max:        max,
		maxSet:     maxSet,
		factor:     factor,
		retryCount: retryCount,
		unbounded:  retryCount == Unbounded,
		fastFirst:  fastFirst,
	}, nil
}

func (p *exponentialPolicy) RetryCount() (int, bool) { return p.retryCount, p.unbounded }
func (p *exponentialPolicy) FastFirst() bool         { return p.fastFirst }
func (p *exponentialPolicy) NewSequence() DelaySequence {
	return &pureSequence{fn: func(attempt int) time.Duration {
		n := attempt
		if p.fastFirst {
			if attempt == 0 {
				return 0
			}
			n = attempt - 1
		}
		d := time.Duration(float64(p.initial) * pow(p.factor, n))
		if p.maxSet && d > p.max {
			return p.max
		}
		return d
	}}
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// -- Decorrelated jitter ----------------------------------------------------

type decorrelatedJitterPolicy struct {
	initial    time.Duration
	max        time.Duration
	retryCount int
	unbounded  bool
	fastFirst  bool
	seed       int64
	seeded     bool
}

// NewDecorrelatedJitterPolicy returns a policy where delay(0) = initial (or
// 0 if fastFirst), and delay(i) = uniform(initial, min(max, previous*3)).
// Pass WithSeed to make the sequence reproducible in tests; without it each
// NewSequence draws from a fresh unseeded source.
func NewDecorrelatedJitterPolicy(initial, max time.Duration, retryCount int, fastFirst bool, opts ...JitterOption) (RecoveryPolicy, error) {
	if err := validateCommon(initial, retryCount, max, true); err != nil {
		return nil, err
	}
	p := &decorrelatedJitterPolicy{
		initial:    initial,
		max:        max,
		retryCount: retryCount,
		unbounded:  retryCount == Unbounded,
		fastFirst:  fastFirst,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// JitterOption configures a DecorrelatedJitter policy at construction time.
type JitterOption func(*decorrelatedJitterPolicy)

// WithSeed fixes the random source so tests can assert an exact sequence.
func WithSeed(seed int64) JitterOption {
	return func(p *decorrelatedJitterPolicy) {
		p.seed = seed
		p.seeded = true
	}
}

func (p *decorrelatedJitterPolicy) RetryCount() (int, bool) { return p.retryCount, p.unbounded }
func (p *decorrelatedJitterPolicy) FastFirst() bool         { return p.fastFirst }

func (p *decorrelatedJitterPolicy) NewSequence() DelaySequence {
	var src rand.Source
	if p.seeded {
		src = rand.NewSource(p.seed)
	} else {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &jitterSequence{policy: p, rng: rand.New(src)}
}

type jitterSequence struct {
	policy  *decorrelatedJitterPolicy
	rng     *rand.Rand
	attempt int
	prev    time.Duration
}

func (s *jitterSequence) Next() time.Duration {
	defer func() { s.attempt++ }()
	if s.attempt == 0 {
		if s.policy.fastFirst {
			s.prev = 0
			return 0
		}
		s.prev = s.policy.initial
		return s.prev
	}
	upper := s.policy.prev3(s.prev)
	if upper <= s.policy.initial {
		s.prev = s.policy.initial
		return s.prev
	}
	span := int64(upper - s.policy.initial)
	d := s.policy.initial + time.Duration(s.rng.Int63n(span+1))
	s.prev = d
	return d
}

func (p *decorrelatedJitterPolicy) prev3(previous time.Duration) time.Duration {
	tripled := previous * 3
	if tripled > p.max || tripled <= 0 {
		return p.max
	}
	return tripled
}

// -- shared plumbing ---------------------------------------------------------

// pureSequence wraps a pure function of attempt index so that non-jitter
// policies share DelaySequence's calling convention.
type pureSequence struct {
	attempt int
	fn      func(attempt int) time.Duration
}

func (s *pureSequence) Next() time.Duration {
	d := s.fn(s.attempt)
	s.attempt++
	return d
}

// Unbounded is the retryCount value meaning "retry forever". Any other
// negative value is rejected at construction.
const Unbounded = -1
