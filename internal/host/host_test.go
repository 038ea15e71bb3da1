package host

import (
	"net"
	"testing"

	"github.com/DrJosh9000/capview/internal/dnscache"
	"github.com/DrJosh9000/capview/internal/pubsub"
)

func addr(s string) [4]byte {
	a, _ := dnscache.IPToKey(net.ParseIP(s))
	return a
}

func TestIsLocalRFC1918Ranges(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.1", true},
		{"172.16.5.5", true},
		{"192.168.1.1", true},
		{"8.8.8.8", false},
		{"93.184.216.34", false},
	}
	for _, tt := range tests {
		if got := IsLocal(net.ParseIP(tt.ip)); got != tt.want {
			t.Errorf("IsLocal(%s): got %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestObserveInsertsLocalHostWithMAC(t *testing.T) {
	bus := pubsub.New()
	var gotNew bool
	bus.Subscribe2(TopicHostAdded, func(a, b any) { gotNew = b.(bool) })

	a := New(bus, nil)
	mac, _ := net.ParseMAC("00:11:22:33:44:55")
	a.Observe(addr("10.0.0.1"), addr("10.0.0.2"), mac, mac, nil)

	local := a.Local()
	h, ok := local[addr("10.0.0.1")]
	if !ok {
		t.Fatal("expected 10.0.0.1 in local table")
	}
	if h.MAC.String() != mac.String() {
		t.Errorf("MAC: got %v, want %v", h.MAC, mac)
	}
	if !gotNew {
		t.Error("expected TopicHostAdded to fire with added=true")
	}
}

func TestObserveClassifiesRemoteSeparately(t *testing.T) {
	a := New(nil, nil)
	a.Observe(addr("10.0.0.1"), addr("8.8.8.8"), nil, nil, nil)
	if _, ok := a.Local()[addr("10.0.0.1")]; !ok {
		t.Error("expected 10.0.0.1 in local table")
	}
	if _, ok := a.Remote()[addr("8.8.8.8")]; !ok {
		t.Error("expected 8.8.8.8 in remote table")
	}
}

func TestDuplicateObserveIsIgnored(t *testing.T) {
	bus := pubsub.New()
	fires := 0
	bus.Subscribe2(TopicHostAdded, func(a, b any) { fires++ })
	an := New(bus, nil)
	mac, _ := net.ParseMAC("00:11:22:33:44:55")
	an.Observe(addr("10.0.0.1"), addr("10.0.0.2"), mac, mac, nil)
	an.Observe(addr("10.0.0.1"), addr("10.0.0.2"), mac, mac, nil)
	if fires != 2 {
		t.Fatalf("got %d host-added events after repeated identical Observe, want 2 (one per unique address)", fires)
	}
}

func TestDNSUpdateAttachesNameToExistingHost(t *testing.T) {
	bus := pubsub.New()
	dns := dnscache.New(bus)
	a := New(bus, dns)

	a.Observe(addr("93.184.216.34"), addr("10.0.0.5"), nil, nil, dns)

	var resolved *Host
	bus.Subscribe2(TopicHostNameResolved, func(v, b any) { resolved = v.(*Host) })

	dns.Insert(addr("93.184.216.34"), "example.com")

	h := a.Remote()[addr("93.184.216.34")]
	if h.Name != "example.com" {
		t.Fatalf("Name after DNS update: got %q, want example.com", h.Name)
	}
	if resolved == nil || resolved.Name != "example.com" {
		t.Fatalf("expected TopicHostNameResolved to fire with the updated host")
	}
}

func TestFreeAllClearsBothTables(t *testing.T) {
	a := New(nil, nil)
	a.Observe(addr("10.0.0.1"), addr("8.8.8.8"), nil, nil, nil)
	a.FreeAll()
	if len(a.Local()) != 0 || len(a.Remote()) != 0 {
		t.Fatal("FreeAll did not clear both tables")
	}
}
