package tlrelay

// Decision tells the pipeline what to do with a chunk outcome.
type Decision int

const (
	// DecisionUsePrimary accepts the primary translation of the chunk.
	DecisionUsePrimary Decision = iota
	// DecisionUseOriginal keeps the chunk's source text and moves on.
	DecisionUseOriginal
	// DecisionEscalate abandons the primary provider for the whole token.
	DecisionEscalate
)

func (d Decision) String() string {
	switch d {
	case DecisionUsePrimary:
		return "use_primary"
	case DecisionUseOriginal:
		return "use_original"
	case DecisionEscalate:
		return "escalate"
	default:
		return "unknown"
	}
}

// FailoverState is a snapshot of a FailoverController.
type FailoverState struct {
	ConsecutiveFailures int
	FallbackActive      bool
}

// FailoverController counts consecutive primary failures within one text
// token. Once the threshold is reached it latches into fallback mode until
// Reset. A controller is not safe for concurrent use; the pipeline creates
// one per token.
type FailoverController struct {
	threshold int
	state     FailoverState
}

// NewFailoverController creates a controller. A non-positive threshold
// selects DefaultFailureThreshold.
func NewFailoverController(threshold int) *FailoverController {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	return &FailoverController{threshold: threshold}
}

// Observe records the outcome of one chunk and returns the decision for it.
func (c *FailoverController) Observe(o Outcome) Decision {
	if c.state.FallbackActive {
		return DecisionEscalate
	}

	if o.Status == OutcomeTranslated {
		c.state.ConsecutiveFailures = 0
		return DecisionUsePrimary
	}

	c.state.ConsecutiveFailures++
	if c.state.ConsecutiveFailures >= c.threshold {
		c.state.FallbackActive = true
		return DecisionEscalate
	}
	return DecisionUseOriginal
}

// State returns the current counters.
func (c *FailoverController) State() FailoverState {
	return c.state
}

// Threshold returns the configured failure threshold.
func (c *FailoverController) Threshold() int {
	return c.threshold
}

// Reset clears the failure count and leaves fallback mode.
func (c *FailoverController) Reset() {
	c.state = FailoverState{}
}
