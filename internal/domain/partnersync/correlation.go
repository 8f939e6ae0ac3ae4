package partnersync

// CorrelationPair matches a local entity index to an external record index
type CorrelationPair struct {
	LocalIndex    int
	ExternalIndex int
}

// CorrelationStrategy decides how partner-returned records are matched back
// to the local entities they were generated from. The partner API returns no
// natural keys today, so the default strategy is positional; the interface
// exists so a key-based strategy can replace it if the partner ever returns
// correlatable keys.
type CorrelationStrategy interface {
	Correlate(localCount, externalCount int) []CorrelationPair
}

// PositionalCorrelation zips local and external records by index, truncating
// to the shorter side. Length mismatches are silent: the unmatched tail is
// simply not reconciled.
type PositionalCorrelation struct{}

// Correlate implements CorrelationStrategy
func (PositionalCorrelation) Correlate(localCount, externalCount int) []CorrelationPair {
	n := localCount
	if externalCount < n {
		n = externalCount
	}
	if n <= 0 {
		return nil
	}
	pairs := make([]CorrelationPair, n)
	for i := 0; i < n; i++ {
		pairs[i] = CorrelationPair{LocalIndex: i, ExternalIndex: i}
	}
	return pairs
}

var _ CorrelationStrategy = PositionalCorrelation{}
