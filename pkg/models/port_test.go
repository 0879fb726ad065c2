package models

import "testing"

func TestCanonicalizePort(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"context", PortContext},
		{"Context", PortContext},
		{"ctx", PortContext},
		{"conversation", PortContext},
		{"contextIn", PortContext},
		{"context_out", PortContext},
		{"ctx-input", PortContext},
		{"CONTEXT OUTPUT", PortContext},
		{"data", PortData},
		{"payload", PortData},
		{"main", PortData},
		{"dataOut", PortData},
		{"payload_in", PortData},
		{"tools", PortTools},
		{"tool", PortTools},
		{"toolset", PortTools},
		{"tools_out", PortTools},
		// Unknown names pass through untouched.
		{"result", "result"},
		{"myCustomPort", "myCustomPort"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := CanonicalizePort(tc.raw); got != tc.want {
			t.Errorf("CanonicalizePort(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestPortID(t *testing.T) {
	id := MakePortID("node-1", "data")
	if id != "node-1:data" {
		t.Fatalf("unexpected port id %q", id)
	}

	nodeID, port, ok := ParsePortID(id)
	if !ok || nodeID != "node-1" || port != "data" {
		t.Fatalf("ParsePortID(%q) = %q, %q, %v", id, nodeID, port, ok)
	}

	if _, _, ok := ParsePortID("no-separator"); ok {
		t.Fatal("expected parse failure for id without separator")
	}
}
