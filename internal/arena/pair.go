package arena

// Pair holds the two arenas a capture session needs (spec §4.1): Session is
// long-lived, cleared on capture stop/start, and owns every decoded PDU and
// packet; Request is cleared after each UI render pass and owns scratch
// buffers built just for that render (formatted strings, table rows).
type Pair struct {
	Session *Arena
	Request *Arena
}

// NewPair returns a Pair with both arenas ready to use.
func NewPair() *Pair {
	return &Pair{Session: New(), Request: New()}
}

// ResetSession clears the long-lived arena. Callers must have already
// dropped every packet/connection/host reference rooted in it.
func (p *Pair) ResetSession() {
	p.Session.Reset()
}

// ResetRequest clears the per-render arena.
func (p *Pair) ResetRequest() {
	p.Request.Reset()
}
