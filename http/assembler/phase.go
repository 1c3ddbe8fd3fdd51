package assembler

type Phase uint8

const (
	// AwaitingHeaders buffers until the empty line closing the head.
	AwaitingHeaders Phase = iota
	// AwaitingBody buffers until Content-Length bytes of body.
	AwaitingBody
	// AwaitingChunks buffers until the last chunk and the trailer section.
	AwaitingChunks
	Complete
	Failed
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case AwaitingHeaders:
		return "awaiting headers"
	case AwaitingBody:
		return "awaiting body"
	case AwaitingChunks:
		return "awaiting chunks"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Resolved reports whether the phase is final.
func (p Phase) Resolved() bool { return p >= Complete }
