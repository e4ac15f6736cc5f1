package gauge

// Channel is one pressure reading the gauge can be asked for.
type Channel struct {
	// Name identifies the channel in logs, mirrors and status output.
	Name string

	// Command is the mnemonic placed in the frame.
	Command string
}

// Gauge channels, in poll order.
var (
	Ion = Channel{Name: "ion", Command: "RD"}
	CG1 = Channel{Name: "cg1", Command: "RDCG1"}
	CG2 = Channel{Name: "cg2", Command: "RDCG2"}
)

// Channels returns the channels in the fixed order they are polled each tick.
func Channels() []Channel {
	return []Channel{Ion, CG1, CG2}
}
