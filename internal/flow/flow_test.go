package flow

import (
	"net"
	"testing"

	"github.com/DrJosh9000/capview/internal/pubsub"
)

func ep(addr string, port uint16) Endpoint {
	return Endpoint{Addr: net.ParseIP(addr), Port: port}
}

// TestTrack_SYNThenSYNACKThenACK is scenario S3: three frames between the
// same pair of endpoints (in alternating directions) must all resolve to
// the same connection and walk SYN_SENT -> (SYN+ACK pending) -> ESTABLISHED.
func TestTrack_SYNThenSYNACKThenACK(t *testing.T) {
	bus := pubsub.New()
	var newCount, updateCount int
	bus.Subscribe1(TopicNewConnection, func(any) { newCount++ })
	bus.Subscribe1(TopicConnectionUpdated, func(any) { updateCount++ })

	a := New(bus)
	client := ep("10.0.0.1", 54321)
	server := ep("8.8.8.8", 443)

	conn1, isNew1 := a.Track(client, server, Flags{SYN: true}, 1)
	if !isNew1 {
		t.Fatal("first SYN should create a new connection")
	}
	if conn1.State != StateSynSent {
		t.Fatalf("after SYN, state = %v, want SYN_SENT", conn1.State)
	}

	conn2, isNew2 := a.Track(server, client, Flags{SYN: true, ACK: true}, 2)
	if isNew2 {
		t.Fatal("SYN+ACK in the reverse direction should match the existing connection")
	}
	if conn2 != conn1 {
		t.Fatal("both directions must resolve to the same connection record")
	}
	if conn2.State != StateSynRcvd {
		t.Fatalf("after SYN+ACK, state = %v, want SYN_RCVD (ESTABLISHED pending ACK)", conn2.State)
	}

	conn3, isNew3 := a.Track(client, server, Flags{ACK: true}, 3)
	if isNew3 {
		t.Fatal("final ACK should not create a new connection")
	}
	if conn3.State != StateEstablished {
		t.Fatalf("after final ACK, state = %v, want ESTABLISHED", conn3.State)
	}

	if newCount != 1 {
		t.Fatalf("new-connection publishes = %d, want 1", newCount)
	}
	if updateCount != 2 {
		t.Fatalf("connection-updated publishes = %d, want 2", updateCount)
	}
	if len(conn3.Packets) != 3 {
		t.Fatalf("tracked packet count = %d, want 3", len(conn3.Packets))
	}
}

func TestTrack_RSTMovesToReset(t *testing.T) {
	bus := pubsub.New()
	a := New(bus)
	c, s := ep("10.0.0.1", 1234), ep("10.0.0.2", 80)

	a.Track(c, s, Flags{SYN: true}, 1)
	conn, _ := a.Track(s, c, Flags{RST: true}, 2)
	if conn.State != StateReset {
		t.Fatalf("state after RST = %v, want RESET", conn.State)
	}
}

func TestGetSessionsAndFreeAll(t *testing.T) {
	bus := pubsub.New()
	a := New(bus)
	a.Track(ep("10.0.0.1", 1), ep("10.0.0.2", 2), Flags{SYN: true}, 1)

	if got := len(a.GetSessions()); got != 1 {
		t.Fatalf("got %d sessions, want 1", got)
	}
	a.FreeAll()
	if got := len(a.GetSessions()); got != 0 {
		t.Fatalf("after FreeAll got %d sessions, want 0", got)
	}
}
