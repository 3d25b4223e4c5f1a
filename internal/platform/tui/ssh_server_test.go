package tui

import (
	"testing"

	"github.com/vovakirdan/arena/internal/handshake"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    *handshake.Intent
		wantErr bool
	}{
		{name: "no command opens the picker", args: nil, want: nil},
		{name: "quick", args: []string{"quick"}, want: &handshake.Intent{Route: handshake.RouteQuickMatch}},
		{name: "quick alias", args: []string{"Quick-Match"}, want: &handshake.Intent{Route: handshake.RouteQuickMatch}},
		{name: "create private", args: []string{"create"}, want: &handshake.Intent{Route: handshake.RouteCreate}},
		{name: "create public", args: []string{"create", "PUBLIC"}, want: &handshake.Intent{Route: handshake.RouteCreate, Public: true}},
		{name: "join", args: []string{"join", "ab12"}, want: &handshake.Intent{Route: handshake.RouteJoin, Code: "AB12"}},
		{name: "join without code", args: []string{"join"}, wantErr: true},
		{name: "unknown", args: []string{"snake"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %+v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("got nil, want %+v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("got %+v, want %+v", *got, *tt.want)
			}
		})
	}
}
