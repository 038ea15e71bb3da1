package registry

import "testing"

type constHandler struct{}

func (constHandler) Decode(buf []byte) (any, Next, Kind, string) { return nil, Next{}, NoErr, "" }

func TestRegisterGetRoundtrip(t *testing.T) {
	r := New()
	r.Register(LayerIPProto, 6, constHandler{}, "TCP", "Transmission Control Protocol")
	if r.Get(LayerIPProto, 6) == nil {
		t.Fatal("Get: expected handler, got nil")
	}
	if r.Get(LayerIPProto, 17) != nil {
		t.Fatal("Get: expected nil for unregistered key")
	}
}

func TestRegisterLaterWins(t *testing.T) {
	r := New()
	r.Register(LayerIPProto, 6, constHandler{}, "TCP", "first")
	replaced := r.Register(LayerIPProto, 6, constHandler{}, "TCP", "second")
	if !replaced {
		t.Fatal("second Register: want replaced=true")
	}
	reg, ok := r.Lookup(LayerIPProto, 6)
	if !ok || reg.LongName() != "second" {
		t.Fatalf("Lookup after override: got %+v, ok=%v, want longName=second", reg, ok)
	}
}

func TestIDOfStableAndUnique(t *testing.T) {
	r := New()
	r.Register(LayerIPProto, 6, constHandler{}, "TCP", "")
	r.Register(LayerIPProto, 17, constHandler{}, "UDP", "")
	idTCP := r.IDOf(LayerIPProto, 6)
	idUDP := r.IDOf(LayerIPProto, 17)
	if idTCP == idUDP {
		t.Fatalf("distinct registrations got the same id %d", idTCP)
	}
	if r.IDOf(LayerIPProto, 1) != -1 {
		t.Fatal("IDOf for unregistered key: want -1")
	}
}

func TestFreezeRejectsLateRegistration(t *testing.T) {
	r := New()
	r.Freeze()
	defer func() {
		if recover() == nil {
			t.Fatal("Register after Freeze: want panic")
		}
	}()
	r.Register(LayerIPProto, 6, constHandler{}, "TCP", "")
}

func TestRecordDecodeAccumulates(t *testing.T) {
	r := New()
	r.Register(LayerIPProto, 6, constHandler{}, "TCP", "")
	r.RecordDecode(LayerIPProto, 6, 40)
	r.RecordDecode(LayerIPProto, 6, 60)
	reg, _ := r.Lookup(LayerIPProto, 6)
	packets, bytes := reg.Stats()
	if packets != 2 || bytes != 100 {
		t.Fatalf("Stats: got packets=%d bytes=%d, want 2 100", packets, bytes)
	}
}

func TestEnumerateVisitsEveryRegistration(t *testing.T) {
	r := New()
	r.Register(LayerIPProto, 6, constHandler{}, "TCP", "")
	r.Register(LayerIPProto, 17, constHandler{}, "UDP", "")
	seen := map[Key]bool{}
	r.Enumerate(func(layer Layer, key Key, reg Registration) {
		seen[key] = true
	})
	if !seen[6] || !seen[17] {
		t.Fatalf("Enumerate: got %v, want both 6 and 17", seen)
	}
}
