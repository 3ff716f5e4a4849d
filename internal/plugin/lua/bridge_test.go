package lua

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	glua "github.com/yuin/gopher-lua"
)

type widthsPayload struct {
	Key    string    `json:"key"`
	Widths []float64 `json:"widths"`
	Note   string    `json:"note,omitempty"`
	Skip   int       `json:"-"`
	hidden int
}

type named string

func TestBridgeRoundTrip(t *testing.T) {
	state := newState(t)
	b := state.Bridge()

	in := map[string]any{
		"name":  "cards",
		"count": int64(3),
		"ratio": 0.5,
		"ok":    true,
		"list":  []any{"a", int64(2)},
		"inner": map[string]any{"x": int64(1)},
	}
	got := b.ToGoValue(b.ToLuaValue(in))
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBridgeStruct(t *testing.T) {
	state := newState(t)
	b := state.Bridge()

	lv := b.ToLuaValue(widthsPayload{Key: "k1", Widths: []float64{0.25, 0.75}, Skip: 1, hidden: 2})
	tbl, ok := lv.(*glua.LTable)
	if !ok {
		t.Fatalf("struct converted to %T", lv)
	}
	if s, _ := b.GetTableString(tbl, "key"); s != "k1" {
		t.Errorf("key = %q", s)
	}
	for _, absent := range []string{"note", "Skip", "hidden"} {
		if tbl.RawGetString(absent) != glua.LNil {
			t.Errorf("%s should be omitted", absent)
		}
	}
	want := map[string]any{"key": "k1", "widths": []any{0.25, 0.75}}
	if diff := cmp.Diff(want, b.ToGoValue(tbl)); diff != "" {
		t.Errorf("struct table mismatch (-want +got):\n%s", diff)
	}
}

func TestBridgeNamedAndPointer(t *testing.T) {
	state := newState(t)
	b := state.Bridge()

	if lv := b.ToLuaValue(named("x")); lv != glua.LString("x") {
		t.Errorf("named string = %v", lv)
	}
	var nilPtr *widthsPayload
	if lv := b.ToLuaValue(nilPtr); lv != glua.LNil {
		t.Errorf("nil pointer = %v", lv)
	}
	if lv := b.ToLuaValue(&widthsPayload{Key: "p"}); lv.Type() != glua.LTTable {
		t.Errorf("pointer to struct = %v", lv.Type())
	}
}

func TestBridgeTables(t *testing.T) {
	state := newState(t)
	b := state.Bridge()
	if err := state.DoString(`
		empty = {}
		sparse = {[1] = "a", [3] = "c"}
		cyclic = {}
		cyclic.self = cyclic
	`); err != nil {
		t.Fatal(err)
	}

	if got, ok := b.ToGoValue(state.GetGlobal("empty")).(map[string]any); !ok || len(got) != 0 {
		t.Errorf("empty table = %#v, want empty map", got)
	}
	want := map[string]any{"1": "a", "3": "c"}
	if diff := cmp.Diff(want, b.ToGoValue(state.GetGlobal("sparse"))); diff != "" {
		t.Errorf("sparse table mismatch (-want +got):\n%s", diff)
	}
	cyc, ok := b.ToGoValue(state.GetGlobal("cyclic")).(map[string]any)
	if !ok || cyc["self"] != nil {
		t.Errorf("cyclic table = %#v", cyc)
	}
}

func TestWrapGoFunc(t *testing.T) {
	state := newState(t)
	b := state.Bridge()
	state.SetGlobal("double", state.LuaState().NewFunction(b.WrapGoFunc(func(args []any) (any, error) {
		n, _ := args[0].(int64)
		return n * 2, nil
	})))

	if err := state.DoString(`r = double(21)`); err != nil {
		t.Fatal(err)
	}
	if state.GetGlobal("r") != glua.LNumber(42) {
		t.Errorf("double(21) = %v", state.GetGlobal("r"))
	}
}
