package genesis

// Derived consensus timing parameters shared by IBFT2 and QBFT.
const (
	// EpochLength is the number of blocks between validator voting epochs.
	EpochLength = 30000

	// EmptyBlockPeriodSeconds is how long a proposer waits before emitting
	// an empty block when there are no pending transactions.
	EmptyBlockPeriodSeconds = 60

	// roundChangeMultiplier scales the block period into the safety buffer
	// added to the request timeout. A BFT round must fit at least one
	// minimum block period plus one retransmission.
	roundChangeMultiplier = 1.33

	minBlockPeriodFloor = 60
	minBufferFloor      = 5
)

// BFTConfig is the consensus sub-block embedded into the genesis chain
// config, keyed "ibft2" or "qbft" depending on the chosen algorithm.
type BFTConfig struct {
	BlockPeriodSeconds      int `json:"blockperiodseconds"`
	EpochLength             int `json:"epochlength"`
	RequestTimeoutSeconds   int `json:"requesttimeoutseconds"`
	EmptyBlockPeriodSeconds int `json:"xemptyblockperiodseconds"`
}

// RequestTimeoutSeconds derives the BFT round timeout from the target
// block period:
//
//	floor(max(60, blockPeriod) + max(5, blockPeriod * 1.33))
//
// The buffer is floored at 5 seconds so very fast chains still tolerate
// one retransmission before a round change fires.
func RequestTimeoutSeconds(blockPeriodSeconds int) int {
	period := float64(blockPeriodSeconds)
	if period < minBlockPeriodFloor {
		period = minBlockPeriodFloor
	}
	buffer := float64(blockPeriodSeconds) * roundChangeMultiplier
	if buffer < minBufferFloor {
		buffer = minBufferFloor
	}
	return int(period + buffer)
}

// NewBFTConfig bundles the constant epoch parameters with the derived
// request timeout for the given block period.
func NewBFTConfig(blockPeriodSeconds int) *BFTConfig {
	return &BFTConfig{
		BlockPeriodSeconds:      blockPeriodSeconds,
		EpochLength:             EpochLength,
		RequestTimeoutSeconds:   RequestTimeoutSeconds(blockPeriodSeconds),
		EmptyBlockPeriodSeconds: EmptyBlockPeriodSeconds,
	}
}
