package replay_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/kevin-chtw/tw_replay/replay"
	"github.com/kevin-chtw/tw_replay/utils"
)

func encodeScriptJSON(t *testing.T, script map[string]any) []byte {
	t.Helper()
	plain, err := json.Marshal(script)
	if err != nil {
		t.Fatal(err)
	}
	encoded, err := utils.EncodeScript(plain)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(map[string]string{"script": encoded})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestParseRecordEnvelopeErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"not json", []byte("{{")},
		{"missing script", []byte(`{"id":"x"}`)},
		{"bad base64", []byte(`{"script":"%%%%"}`)},
	}
	for _, tc := range cases {
		_, err := replay.ParseRecord(tc.raw)
		var envErr *replay.EnvelopeError
		if !errors.As(err, &envErr) {
			t.Errorf("%s: err = %v, want EnvelopeError", tc.name, err)
		}
	}
}

func TestParseRecordMissingFields(t *testing.T) {
	full := func() map[string]any {
		return map[string]any{
			"w": sequentialWallHex(),
			"d": 0x1111,
			"a": [][]int{},
		}
	}

	for _, field := range []string{"w", "d", "a"} {
		script := full()
		delete(script, field)
		_, err := replay.ParseRecord(encodeScriptJSON(t, script))
		var parseErr *replay.ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("missing %s: err = %v, want ParseError", field, err)
			continue
		}
		if parseErr.Field != field {
			t.Errorf("missing %s: reported field %s", field, parseErr.Field)
		}
	}
}

func TestParseRecordFields(t *testing.T) {
	script := map[string]any{
		"w": sequentialWallHex(),
		"d": 0x6543,
		"a": [][]int{
			{0<<4 | 2, 44, 1000},
			{3<<4 | 7, 28, 2500},
		},
		"b": 0x12,
		"i": 9,
		"p": []map[string]any{
			{"i": "a", "n": "甲", "e": 1502.5},
			{"i": 42, "n": "乙", "e": 1490.0},
			{"i": "c", "n": "丙", "e": 1500.0},
			{"i": "d", "n": "丁", "e": 1500.0},
		},
		"y": []map[string]any{{}, {"f": 12, "t": map[string]int{"21": 24}}, {}, {}},
		"g": map[string]any{"t": "测试局"},
	}

	record, err := replay.ParseRecord(encodeScriptJSON(t, script))
	if err != nil {
		t.Fatal(err)
	}

	if record.Dice != [4]int{3, 4, 5, 6} {
		t.Errorf("dice = %v", record.Dice)
	}
	if len(record.Actions) != 2 {
		t.Fatalf("actions = %d", len(record.Actions))
	}
	if a := record.Actions[0]; a.Seat != 0 || a.Kind != 2 || a.Data != 44 || a.TimeMs != 1000 {
		t.Errorf("action 0 = %+v", a)
	}
	if a := record.Actions[1]; a.Seat != 3 || a.Kind != 7 {
		t.Errorf("action 1 = %+v", a)
	}
	if record.WinFlags != 0x12 || !record.HasWinFlags() {
		t.Error("win flags wrong")
	}
	// 圈风：9/4%4 = 2 → 西
	if record.RoundWindIndex() != 2 {
		t.Errorf("round wind = %d, want 2", record.RoundWindIndex())
	}
	if record.Players[1].ID != "42" || record.Players[0].ID != "a" {
		t.Errorf("player ids = %v, %v", record.Players[0].ID, record.Players[1].ID)
	}
	if record.Title != "测试局" {
		t.Errorf("title = %q", record.Title)
	}
	if win := record.WinDataOf(1); win.TotalFan != 12 || win.FanMap["21"] != 24 {
		t.Errorf("win data = %+v", win)
	}
	if win := record.WinDataOf(3); win.TotalFan != 0 {
		t.Errorf("empty win data = %+v", win)
	}
}

func TestDecodeScriptRoundTrip(t *testing.T) {
	plain := []byte(`{"w":"00","d":1,"a":[]}`)
	encoded, err := utils.EncodeScript(plain)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := utils.DecodeScript(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != string(plain) {
		t.Errorf("round trip = %q", decoded)
	}
}

func TestParseRecordBadWall(t *testing.T) {
	script := map[string]any{"w": "zz", "d": 1, "a": [][]int{}}
	_, err := replay.ParseRecord(encodeScriptJSON(t, script))
	var parseErr *replay.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want ParseError", err)
	}

	script["w"] = fmt.Sprintf("%04x", 0) // 太短
	_, err = replay.ParseRecord(encodeScriptJSON(t, script))
	if !errors.As(err, &parseErr) {
		t.Fatalf("short wall: err = %v, want ParseError", err)
	}
}
