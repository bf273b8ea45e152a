package strategy

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Default indicator settings
const (
	DefaultMomentumPeriod = 24
	DefaultRSIPeriod      = 14
	DefaultMACDFast       = 12
	DefaultMACDSlow       = 26
	DefaultMACDSignal     = 9
	DefaultBBandsPeriod   = 20
	DefaultBBandsDev      = 2.0
	DefaultEMAFast        = 12
	DefaultEMASlow        = 26
)

// StrategyManager is the registry of score sources by signal name
type StrategyManager struct {
	sources map[string]ScoreSource
}

// NewStrategyManager registers the indicator sources, and the file source
// when scoreFile is set.
func NewStrategyManager(scoreFile string) *StrategyManager {
	m := &StrategyManager{sources: make(map[string]ScoreSource)}

	m.Register(NewMomentumSource(DefaultMomentumPeriod))
	m.Register(NewMACDSource(DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal))
	m.Register(NewRSISource(DefaultRSIPeriod))
	m.Register(NewBollingerSource(DefaultBBandsPeriod, DefaultBBandsDev))
	m.Register(NewEMACrossSource(DefaultEMAFast, DefaultEMASlow))

	if scoreFile != "" {
		m.Register(NewFileSource(scoreFile))
	}
	return m
}

// Register adds or replaces a source under its name
func (m *StrategyManager) Register(source ScoreSource) {
	m.sources[source.Name()] = source
}

func (m *StrategyManager) Get(name string) (ScoreSource, error) {
	source, ok := m.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
	}
	return source, nil
}

// Names returns the registered signal names in sorted order
func (m *StrategyManager) Names() []string {
	names := lo.Keys(m.sources)
	sort.Strings(names)
	return names
}

// MaxLookback is the longest warmup among the named sources
func (m *StrategyManager) MaxLookback(names ...string) (int, error) {
	lookback := 0
	for _, name := range names {
		source, err := m.Get(name)
		if err != nil {
			return 0, err
		}
		if l := source.Lookback(); l > lookback {
			lookback = l
		}
	}
	return lookback, nil
}
