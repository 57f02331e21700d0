// Package metrics records interpreter activity.
// Defined metrics, published through expvar under "vm":
//   calls (counter)
//   returns (counter)
//   reverts (counter)
//   faults (counter)
//   gas (histogram of gas used per top-level call)
package metrics

import (
	"encoding/json"
	"expvar"
	"sync"

	"github.com/codahale/hdrhistogram"
)

// Outcome classifies how a call ended.
type Outcome string

const (
	Returned Outcome = "returns"
	Reverted Outcome = "reverts"
	Faulted  Outcome = "faults"
)

const maxGas = 1 << 40

var (
	vars = expvar.NewMap("vm")

	gasMu sync.Mutex // protects gas
	gas   = hdrhistogram.New(1, maxGas, 3)
)

func init() {
	vars.Set("gas", expvar.Func(func() interface{} {
		gasMu.Lock()
		defer gasMu.Unlock()
		return gas.Export()
	}))
}

// RecordCall counts one top-level call with the given outcome and
// adds gasUsed to the gas histogram.
func RecordCall(o Outcome, gasUsed uint64) {
	vars.Add("calls", 1)
	vars.Add(string(o), 1)

	if gasUsed < 1 {
		gasUsed = 1
	}
	if gasUsed > maxGas {
		gasUsed = maxGas
	}
	gasMu.Lock()
	gas.RecordValue(int64(gasUsed)) // in range, cannot fail
	gasMu.Unlock()
}

// Summary is a point-in-time view of the recorded metrics.
type Summary struct {
	Calls   int64 `json:"calls"`
	Returns int64 `json:"returns"`
	Reverts int64 `json:"reverts"`
	Faults  int64 `json:"faults"`
	GasP50  int64 `json:"gas_p50"`
	GasP99  int64 `json:"gas_p99"`
	GasMax  int64 `json:"gas_max"`
}

// Snapshot returns the current counter values and gas quantiles.
func Snapshot() Summary {
	s := Summary{
		Calls:   counter("calls"),
		Returns: counter(string(Returned)),
		Reverts: counter(string(Reverted)),
		Faults:  counter(string(Faulted)),
	}
	gasMu.Lock()
	if gas.TotalCount() > 0 {
		s.GasP50 = gas.ValueAtQuantile(50)
		s.GasP99 = gas.ValueAtQuantile(99)
		s.GasMax = gas.Max()
	}
	gasMu.Unlock()
	return s
}

// String formats the summary as JSON.
func (s Summary) String() string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Reset zeroes every metric. It exists for tests.
func Reset() {
	vars.Init()
	vars.Set("gas", expvar.Func(func() interface{} {
		gasMu.Lock()
		defer gasMu.Unlock()
		return gas.Export()
	}))
	gasMu.Lock()
	gas.Reset()
	gasMu.Unlock()
}

func counter(name string) int64 {
	if v, ok := vars.Get(name).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}
