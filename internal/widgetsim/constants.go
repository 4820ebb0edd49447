package widgetsim

// HTTP status code constants.
const (
	StatusOK = 200
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Verification constants.
const (
	PercentageMultiplier = 100
	percentSumTolerance  = 0.1
)
