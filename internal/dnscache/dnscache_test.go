package dnscache

import (
	"net"
	"testing"

	"github.com/DrJosh9000/capview/internal/pubsub"
)

func TestInsertAndLookup(t *testing.T) {
	c := New(nil)
	addr, _ := IPToKey(net.ParseIP("93.184.216.34"))
	c.Insert(addr, "example.com")
	name, ok := c.Lookup(addr)
	if !ok || name != "example.com" {
		t.Fatalf("Lookup: got (%q, %v), want (example.com, true)", name, ok)
	}
}

func TestLookupMiss(t *testing.T) {
	c := New(nil)
	_, ok := c.Lookup([4]byte{1, 2, 3, 4})
	if ok {
		t.Fatal("Lookup on empty cache: got ok=true, want false")
	}
}

func TestInsertPublishes(t *testing.T) {
	bus := pubsub.New()
	c := New(bus)
	var got Entry
	bus.Subscribe1(TopicResolved, func(a any) { got = a.(Entry) })
	addr, _ := IPToKey(net.ParseIP("8.8.8.8"))
	c.Insert(addr, "dns.google")
	if got.Name != "dns.google" || got.Addr != addr {
		t.Fatalf("subscriber got %+v, want Addr=%v Name=dns.google", got, addr)
	}
}

func TestIPToKeyRejectsIPv6(t *testing.T) {
	_, ok := IPToKey(net.ParseIP("2607:f8b0:400e:c05::8d"))
	if ok {
		t.Fatal("IPToKey on an IPv6 address: got ok=true, want false")
	}
}
