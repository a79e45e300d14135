package replay_test

import (
	"slices"
	"testing"

	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/kevin-chtw/tw_replay/replay"
)

// chowData 组吃牌data：基准牌低6位，方向6-7位，o1/o2/o3在10/12/14位
func chowData(base mahjong.Tile, direction int32, o1, o2, o3 int) int {
	return int(base)>>2 | int(direction)<<6 | o1<<10 | o2<<12 | o3<<14
}

func TestProcessDiscard(t *testing.T) {
	state := replay.NewGameState()
	proc := replay.NewProcessor(state)

	state.PutHandTile(1, 44)
	state.PutHandTile(1, 50)
	proc.ProcessAction(replay.Action{Seat: 1, Kind: mahjong.ActionDiscard, Data: 44})

	if slices.Contains(state.Hand(1), 44) {
		t.Error("discarded tile still in hand")
	}
	if got := state.Discards(1); len(got) != 1 || got[0] != 44 {
		t.Errorf("discard pile = %v", got)
	}
	if state.LastDiscardTile() != 44 || state.LastDiscardSeat() != 1 {
		t.Error("last discard latch wrong")
	}
	if state.CurrentSeat() != 1 {
		t.Error("current seat not updated")
	}
}

func TestProcessChowPopsOfferPile(t *testing.T) {
	state := replay.NewGameState()
	proc := replay.NewProcessor(state)

	// 座位0打出identity 5（牌20）；座位1持identity 4和6吃之。
	// 从座位1看座位0的相对方向是(0-1+4)%4=3。
	state.PutHandTile(0, 20)
	proc.ProcessAction(replay.Action{Seat: 0, Kind: mahjong.ActionDiscard, Data: 20})

	state.PutHandTile(1, 16) // identity 4
	state.PutHandTile(1, 24) // identity 6
	data := chowData(20, 3, 0, 0, 0)
	proc.ProcessAction(replay.Action{Seat: 1, Kind: mahjong.ActionChow, Data: data})

	if got := len(state.Discards(0)); got != 0 {
		t.Errorf("offer pile size = %d, want 0 after claim", got)
	}

	packs := state.Packs(1)
	if len(packs) != 1 {
		t.Fatalf("packs = %d, want 1", len(packs))
	}
	if packs[0].Direction != 3 {
		t.Errorf("pack direction = %d, want 3", packs[0].Direction)
	}
	if len(packs[0].Tiles) != 3 {
		t.Errorf("pack size = %d, want 3", len(packs[0].Tiles))
	}
	// 被吃的是中间那张identity 5
	if got := packs[0].Tiles[packs[0].OfferSeq].Identity(); got != 5 {
		t.Errorf("offered tile identity = %d, want 5", got)
	}
	if len(state.Hand(1)) != 0 {
		t.Errorf("hand after chow = %v, want empty", state.Hand(1))
	}
}

func TestProcessPon(t *testing.T) {
	state := replay.NewGameState()
	proc := replay.NewProcessor(state)

	state.PutHandTile(3, 40)
	proc.ProcessAction(replay.Action{Seat: 3, Kind: mahjong.ActionDiscard, Data: 40})

	state.PutHandTile(0, 41)
	state.PutHandTile(0, 42)
	data := 40>>2 | 3<<6 // 基准identity 10；从座位0看座位3方向为3
	proc.ProcessAction(replay.Action{Seat: 0, Kind: mahjong.ActionPon, Data: data})

	if len(state.Discards(3)) != 0 {
		t.Error("offer pile not popped")
	}
	packs := state.Packs(0)
	if len(packs) != 1 || len(packs[0].Tiles) != 3 || packs[0].Direction != 3 {
		t.Fatalf("pon pack wrong: %+v", packs)
	}
	if len(state.Hand(0)) != 0 {
		t.Errorf("hand after pon = %v", state.Hand(0))
	}
}

func TestProcessAddedKong(t *testing.T) {
	state := replay.NewGameState()
	proc := replay.NewProcessor(state)

	// 已有identity 7的碰（方向2），手里有第四张（牌31）
	state.PushPack(2, mahjong.Pack{Tiles: []mahjong.Tile{28, 28, 28}, Direction: 2})
	state.PutHandTile(2, 31)

	data := 28>>2 | 0x0300
	proc.ProcessAction(replay.Action{Seat: 2, Kind: mahjong.ActionKon, Data: data})

	packs := state.Packs(2)
	if len(packs) != 1 || len(packs[0].Tiles) != 4 {
		t.Fatalf("pack not upgraded: %+v", packs)
	}
	if packs[0].Direction != 7 { // 5+原方向2
		t.Errorf("pack direction = %d, want 7", packs[0].Direction)
	}
	if !state.IsLastActionKong() || !state.IsLastActionAddKong() {
		t.Error("kong latches not set")
	}
	// 抢杠用：杠牌成为全局弃牌
	if state.LastDiscardTile().Identity() != 7 || state.LastDiscardSeat() != 2 {
		t.Error("add kong should publish the tile as last discard")
	}
	if len(state.Hand(2)) != 0 {
		t.Errorf("hand after add kong = %v", state.Hand(2))
	}
}

func TestProcessConcealedKong(t *testing.T) {
	state := replay.NewGameState()
	proc := replay.NewProcessor(state)

	for _, tile := range []mahjong.Tile{56, 57, 58, 59} {
		state.PutHandTile(1, tile)
	}
	data := 56 >> 2 // 方向0
	proc.ProcessAction(replay.Action{Seat: 1, Kind: mahjong.ActionKon, Data: data})

	packs := state.Packs(1)
	if len(packs) != 1 || !packs[0].IsAnKon() {
		t.Fatalf("concealed kong wrong: %+v", packs)
	}
	if state.IsLastActionAddKong() {
		t.Error("concealed kong should not set add-kong latch")
	}
}

func TestZeroDataClaimIsNoop(t *testing.T) {
	state := replay.NewGameState()
	proc := replay.NewProcessor(state)

	state.PutHandTile(2, 10)
	for _, kind := range []int{mahjong.ActionChow, mahjong.ActionPon, mahjong.ActionKon} {
		proc.ProcessAction(replay.Action{Seat: 2, Kind: kind, Data: 0})
	}
	if len(state.Packs(2)) != 0 || len(state.Hand(2)) != 1 {
		t.Error("zero-data claim mutated state")
	}
	if state.CurrentSeat() != 2 {
		t.Error("zero-data claim should still set current seat")
	}
}

func TestHandSortedAfterAction(t *testing.T) {
	state := replay.NewGameState()
	proc := replay.NewProcessor(state)

	proc.ProcessAction(replay.Action{Seat: 0, Kind: mahjong.ActionDraw, Data: 90})
	proc.ProcessAction(replay.Action{Seat: 0, Kind: mahjong.ActionDraw, Data: 8})
	proc.ProcessAction(replay.Action{Seat: 0, Kind: mahjong.ActionDraw, Data: 44})

	if !slices.IsSorted(state.Hand(0)) {
		t.Errorf("hand not sorted: %v", state.Hand(0))
	}
	if state.LastDrawTile(0) != 44 {
		t.Errorf("last draw = %d, want 44", state.LastDrawTile(0))
	}
}

func TestFlowerReplacement(t *testing.T) {
	state := replay.NewGameState()
	proc := replay.NewProcessor(state)

	state.PutHandTile(3, 138) // 花牌竹
	data := 100 | (138-136)<<8
	proc.ProcessAction(replay.Action{Seat: 3, Kind: mahjong.ActionFlower, Data: data})

	if state.FlowerCount(3) != 1 {
		t.Errorf("flower count = %d", state.FlowerCount(3))
	}
	if got := state.FlowerTiles(3); len(got) != 1 || got[0] != 138 {
		t.Errorf("flower tiles = %v", got)
	}
	if !slices.Contains(state.Hand(3), 100) {
		t.Error("replacement tile not in hand")
	}
	if slices.Contains(state.Hand(3), 138) {
		t.Error("flower still in hand")
	}
	if state.LastDrawTile(3) != 100 {
		t.Error("last draw latch not set to replacement")
	}
}
