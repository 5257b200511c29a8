package core

// SigSet is a signal mask.
type SigSet uint64

// CPUSet is a CPU affinity mask, one bit per logical CPU.
type CPUSet uint64

// SchedParam carries scheduling parameters.
type SchedParam struct {
	Policy   int
	Priority int
}

// Extensions is the part of the LWP contract that threading libraries link
// against but the runtime does not implement: signals, TLS setup,
// cancellation, affinity and scheduling parameters. Every call succeeds
// without changing state, except Rasctl which reports ErrUnsupported.
type Extensions interface {
	SigProcMask(how int, set *SigSet, old *SigSet) error
	SetContext(ctx any) error
	StaticTLSSetup()
	CancelStubBinder()
	GetAffinity(id ID) (CPUSet, error)
	SetAffinity(id ID, set CPUSet) error
	GetParam(id ID) (SchedParam, error)
	SetParam(id ID, param SchedParam) error
	Rasctl() error
}

// NullExtensions is the inert Extensions implementation. Runtime embeds it
// by value, so the calls resolve statically.
type NullExtensions struct{}

var _ Extensions = NullExtensions{}

// SigProcMask leaves set and old untouched.
func (NullExtensions) SigProcMask(how int, set *SigSet, old *SigSet) error { return nil }

// SetContext ignores ctx.
func (NullExtensions) SetContext(ctx any) error { return nil }

func (NullExtensions) StaticTLSSetup() {}

func (NullExtensions) CancelStubBinder() {}

// GetAffinity reports an empty mask.
func (NullExtensions) GetAffinity(id ID) (CPUSet, error) { return 0, nil }

func (NullExtensions) SetAffinity(id ID, set CPUSet) error { return nil }

// GetParam reports zero parameters.
func (NullExtensions) GetParam(id ID) (SchedParam, error) { return SchedParam{}, nil }

func (NullExtensions) SetParam(id ID, param SchedParam) error { return nil }

// Rasctl reports that restartable atomic sequences are not available.
func (NullExtensions) Rasctl() error { return ErrUnsupported }
