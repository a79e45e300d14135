package stats_test

import (
	"testing"

	"github.com/kevin-chtw/tw_replay/gbfan"
	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/kevin-chtw/tw_replay/replay"
	"github.com/kevin-chtw/tw_replay/stats"
)

func testRecord() *replay.Record {
	return &replay.Record{
		Players: []replay.PlayerInfo{
			{ID: "a", Name: "甲"}, {ID: "b", Name: "乙"}, {ID: "c", Name: "丙"}, {ID: "d", Name: "丁"},
		},
		Wins: make([]replay.WinData, 4),
	}
}

func putTiles(state *replay.GameState, seat int32, tiles ...mahjong.Tile) {
	for _, tile := range tiles {
		state.PutHandTile(seat, tile)
	}
	state.SortHand(seat)
}

// 场景：座位0打出4条，座位1和2都能以起和番和牌，截和成立
func TestCheckIntercept(t *testing.T) {
	state := replay.NewGameState()
	record := testRecord()

	// 座位1：清一色九莲式听牌 1112345678999条，任意条都能和
	putTiles(state, 1, 36, 37, 38, 40, 44, 48, 52, 56, 60, 64, 68, 69, 70)

	// 座位2：2条3条 + 三组暗刻111m222m333m + 99筒，听1条/4条
	putTiles(state, 2, 40, 44, 0, 1, 2, 4, 5, 6, 8, 9, 10, 104, 105)

	// 座位3：杂牌，无法和
	putTiles(state, 3, 0, 12, 24, 36, 52, 68, 72, 84, 96, 108, 112, 116, 120)

	// 座位0打出4条（牌49）
	discard := mahjong.Tile(49)
	state.PutOutTile(0, discard)
	state.SetLastDiscard(0, discard)

	intercept := stats.NewInterceptStats(gbfan.NewScorer())
	intercept.Reset(record)

	event := intercept.CheckIntercept(0, discard, state, 7)

	if len(event.PotentialWinners) != 2 {
		t.Fatalf("potential winners = %v, want [1 2]", event.PotentialWinners)
	}
	if event.PotentialWinners[0] != 1 || event.PotentialWinners[1] != 2 {
		t.Errorf("scan order wrong: %v", event.PotentialWinners)
	}
	if !event.IsIntercept {
		t.Error("two potential winners should flag an intercept")
	}
	if event.WinnerIdx != 1 {
		t.Errorf("winner = %d, want first in priority order", event.WinnerIdx)
	}
	for i, fan := range event.PotentialFans {
		if fan < mahjong.MinWinFan {
			t.Errorf("potential fan %d = %d, below minimum", i, fan)
		}
	}
}

// 观察者流程：正番点和触发探测并在Flush时落账
func TestInterceptObserver(t *testing.T) {
	state := replay.NewGameState()
	record := testRecord()

	putTiles(state, 1, 36, 37, 38, 40, 44, 48, 52, 56, 60, 64, 68, 69, 70)
	putTiles(state, 2, 40, 44, 0, 1, 2, 4, 5, 6, 8, 9, 10, 104, 105)

	discard := mahjong.Tile(49)
	state.PutOutTile(0, discard)
	state.SetLastDiscard(0, discard)

	intercept := stats.NewInterceptStats(gbfan.NewScorer())
	intercept.Reset(record)

	intercept.Observer(replay.Action{Seat: 0, Kind: mahjong.ActionDiscard, Data: int(discard)}, 5, state)
	intercept.Observer(replay.Action{Seat: 1, Kind: mahjong.ActionHu, Data: 10 << 1}, 6, state)
	intercept.Flush()

	result := intercept.Result()
	if result.TotalRonWins != 1 {
		t.Fatalf("ron wins = %d, want 1", result.TotalRonWins)
	}
	if result.InterceptCount != 1 || result.InterceptRate != 1.0 {
		t.Errorf("intercepts = %d rate = %f", result.InterceptCount, result.InterceptRate)
	}
	if ev := result.Events[0]; ev.WinnerIdx != 1 {
		t.Errorf("event winner = %d, want declared seat", ev.WinnerIdx)
	}
}

// 自摸不触发截和探测
func TestObserverIgnoresSelfDraw(t *testing.T) {
	state := replay.NewGameState()
	intercept := stats.NewInterceptStats(gbfan.NewScorer())
	intercept.Reset(testRecord())

	intercept.Observer(replay.Action{Seat: 2, Kind: mahjong.ActionDiscard, Data: 40}, 1, state)
	intercept.Observer(replay.Action{Seat: 1, Kind: mahjong.ActionDraw, Data: 48}, 2, state)
	intercept.Observer(replay.Action{Seat: 1, Kind: mahjong.ActionHu, Data: 16 << 1}, 3, state)
	intercept.Flush()

	if got := intercept.Result().TotalRonWins; got != 0 {
		t.Errorf("self-draw counted as ron: %d", got)
	}
}

// 零番错和不触发探测
func TestObserverIgnoresWrongWin(t *testing.T) {
	state := replay.NewGameState()
	state.SetLastDiscard(0, 40)
	state.PutOutTile(0, 40)

	intercept := stats.NewInterceptStats(gbfan.NewScorer())
	intercept.Reset(testRecord())

	intercept.Observer(replay.Action{Seat: 0, Kind: mahjong.ActionDiscard, Data: 40}, 1, state)
	intercept.Observer(replay.Action{Seat: 1, Kind: mahjong.ActionHu, Data: 1}, 2, state)
	intercept.Flush()

	if got := intercept.Result().TotalRonWins; got != 0 {
		t.Errorf("wrong win counted: %d", got)
	}
}
