package command

import (
	"testing"

	"github.com/lab1702/starweb/internal/entities"
)

func TestParseMove(t *testing.T) {
	o, err := Parse("F12W3W7W9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Kind != entities.OrderMove || o.Fleet != 12 {
		t.Fatalf("got %+v", o)
	}
	want := []int{3, 7, 9}
	if len(o.Path) != len(want) {
		t.Fatalf("path = %v, want %v", o.Path, want)
	}
	for i, w := range want {
		if o.Path[i] != w {
			t.Fatalf("path[%d] = %d, want %d", i, o.Path[i], w)
		}
	}
}

func TestParseBuildSyntaxGenerationsAgree(t *testing.T) {
	current, err := Parse("W5B10I")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	legacy, err := Parse("W5I10I")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Kind != entities.OrderBuildIShips || legacy.Kind != entities.OrderBuildIShips {
		t.Fatalf("current=%+v legacy=%+v, want both OrderBuildIShips", current, legacy)
	}
	if current.World != legacy.World || current.Count != legacy.Count {
		t.Fatalf("current=%+v legacy=%+v, want matching World/Count", current, legacy)
	}
}

func TestParseBuildToFleet(t *testing.T) {
	o, err := Parse("w5b10f3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Kind != entities.OrderBuildToFleet || o.World != 5 || o.Count != 10 || o.Fleet != 3 {
		t.Fatalf("got %+v", o)
	}
}

func TestParsePlunder(t *testing.T) {
	o, err := Parse("F4P9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Kind != entities.OrderPlunder || o.Fleet != 4 || o.World != 9 {
		t.Fatalf("got %+v", o)
	}
}

func TestParseScrapShipsFleetAndWorldForms(t *testing.T) {
	fleetForm, err := Parse("F2Q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fleetForm.Kind != entities.OrderScrapShips || fleetForm.Fleet != 2 {
		t.Fatalf("got %+v", fleetForm)
	}

	worldForm, err := Parse("W6S20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if worldForm.Kind != entities.OrderScrapShips || worldForm.World != 6 || worldForm.Count != 20 {
		t.Fatalf("got %+v", worldForm)
	}
}

func TestParseProbe(t *testing.T) {
	o, err := Parse("F8X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Kind != entities.OrderProbe || o.Fleet != 8 {
		t.Fatalf("got %+v", o)
	}
}

func TestParseCancel(t *testing.T) {
	o, err := Parse("CANCEL 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Kind != entities.OrderCancel || o.Count != 3 {
		t.Fatalf("got %+v", o)
	}
}

func TestParseRejectsQueriesAndJoin(t *testing.T) {
	for _, text := range []string{"TURN", "HELP", "HELP F3", "JOIN Alice"} {
		if _, err := Parse(text); err == nil {
			t.Fatalf("Parse(%q) = nil error, want ParseError", text)
		}
	}
}

func TestParseRejectsEmptyAndUnrecognized(t *testing.T) {
	for _, text := range []string{"", "   ", "NOT A REAL COMMAND"} {
		if _, err := Parse(text); err == nil {
			t.Fatalf("Parse(%q) = nil error, want ParseError", text)
		}
	}
}

func TestParseDeclareRelationVariants(t *testing.T) {
	cases := []struct {
		text    string
		kind    entities.RelationKind
		unally  bool
		arg     string
	}{
		{"A=Bob", entities.RelationAlly, false, "BOB"},
		{"L=Bob", entities.RelationLoader, false, "BOB"},
		{"X=Bob", entities.RelationJihad, false, "BOB"},
		{"N=Bob", entities.RelationNone, true, "BOB"},
	}
	for _, c := range cases {
		o, err := Parse(c.text)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", c.text, err)
		}
		if o.Kind != entities.OrderDeclareRelation || o.Relation != c.kind || o.Unally != c.unally || o.PlayerArg != c.arg {
			t.Fatalf("Parse(%q) = %+v, want relation=%v unally=%v arg=%v", c.text, o, c.kind, c.unally, c.arg)
		}
	}
}

func TestParseJoinDefaults(t *testing.T) {
	args, err := ParseJoin("JOIN Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Name != "Alice" || args.Minutes != 60 || args.Character != entities.EmpireBuilder {
		t.Fatalf("got %+v", args)
	}
}

func TestParseJoinWithMinutesAndCharacter(t *testing.T) {
	args, err := ParseJoin("JOIN Bob 30 pirate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Name != "Bob" || args.Minutes != 30 || args.Character != entities.Pirate {
		t.Fatalf("got %+v", args)
	}
}

func TestParseJoinRejectsMalformed(t *testing.T) {
	if _, err := ParseJoin("JOIN"); err == nil {
		t.Fatal("expected error for JOIN with no name")
	}
}
