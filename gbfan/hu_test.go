package gbfan_test

import (
	"testing"

	"github.com/kevin-chtw/tw_replay/gbfan"
)

func TestIsWin(t *testing.T) {
	cases := []struct {
		hand string
		want bool
	}{
		// 标准型：四顺一将
		{"123m456m789m123s9p9p|ES0000", true},
		// 带副露的刻子型
		{"[111m][222s,1]333p444p9s9s|ES0000", true},
		// 七对
		{"1122334455667m7m|ES1000", true},
		// 十三幺
		{"19m19s19pESWNCFP1m|ES1000", true},
		// 张数不够
		{"123m456m789m13s9p9p|ES0000", false},
		// 无将
		{"123m456m789m123s12p3p|ES0000", false},
	}

	for i, tc := range cases {
		h, err := gbfan.ParseHandtiles(tc.hand)
		if err != nil {
			t.Fatalf("case %d: parse %q: %v", i, tc.hand, err)
		}
		if got := h.IsWin(); got != tc.want {
			t.Errorf("case %d: IsWin(%q) = %v, want %v", i, tc.hand, got, tc.want)
		}
	}
}

func TestParseHandtiles(t *testing.T) {
	h, err := gbfan.ParseHandtiles("[111m][2222s,6]345p99pEE3p|ES0110|ab")
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Melds) != 2 {
		t.Fatalf("melds = %d, want 2", len(h.Melds))
	}
	if h.Melds[0].Kind != gbfan.MeldPon || !h.Melds[0].Claimed {
		t.Error("first meld should be claimed pon")
	}
	if h.Melds[1].Kind != gbfan.MeldKon || !h.Melds[1].Added {
		t.Error("second meld should be added kong")
	}
	if h.WinTile != 2*9+2 { // 3p
		t.Errorf("win tile = %d", h.WinTile)
	}
	if h.SelfDrawn || !h.LastCopy || !h.SeaBottom || h.RobKong {
		t.Errorf("env parse wrong: %+v", h)
	}
	if h.FlowerCount != 2 {
		t.Errorf("flowers = %d, want 2", h.FlowerCount)
	}
}

func TestParseHandtilesErrors(t *testing.T) {
	bad := []string{
		"123m",               // 缺环境串
		"123m456m|XX0000",    // 坏风字
		"[123m456m789m9p9p",  // 未闭合副露
		"123|ES0000",         // 数字无门字母
	}
	for _, s := range bad {
		if _, err := gbfan.ParseHandtiles(s); err == nil {
			t.Errorf("ParseHandtiles(%q) should fail", s)
		}
	}
}
