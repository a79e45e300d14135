package replay_test

import (
	"slices"
	"testing"

	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/kevin-chtw/tw_replay/replay"
)

func sequentialWall() []mahjong.Tile {
	wall := make([]mahjong.Tile, mahjong.WallTileCount)
	for i := range wall {
		wall[i] = mahjong.Tile(i)
	}
	return wall
}

func TestSetupWallAndDeal(t *testing.T) {
	state := replay.NewGameState()
	state.SetupWallAndDeal(sequentialWall(), [4]int{1, 1, 1, 1}, 0)

	if got := len(state.Hand(0)); got != mahjong.TileCountInitBanker {
		t.Errorf("dealer hand size = %d, want %d", got, mahjong.TileCountInitBanker)
	}
	for seat := int32(1); seat < 4; seat++ {
		if got := len(state.Hand(seat)); got != mahjong.TileCountInitNormal {
			t.Errorf("seat %d hand size = %d, want %d", seat, got, mahjong.TileCountInitNormal)
		}
	}

	for seat := int32(0); seat < 4; seat++ {
		if !slices.IsSorted(state.Hand(seat)) {
			t.Errorf("seat %d hand not sorted: %v", seat, state.Hand(seat))
		}
		if !slices.Equal(state.Hand(seat), state.InitialHand(seat)) {
			t.Errorf("seat %d initial hand snapshot differs", seat)
		}
	}

	if got := state.WallFront(); got != 53 {
		t.Errorf("wall front = %d, want 53", got)
	}
	if got := state.WallBack(); got != 143 {
		t.Errorf("wall back = %d, want 143", got)
	}
	if got := state.CurrentSeat(); got != 0 {
		t.Errorf("current seat = %d, want dealer 0", got)
	}

	// 骰子全1时起始偏移为116：庄家第一张是wall[116]
	if got := state.InitialHand(0)[len(state.InitialHand(0))-1]; got != 135 {
		// 排序后的最大张来自第二轮发的132-135
		t.Errorf("dealer max tile = %d, want 135", got)
	}
}

func TestWallRotationOffset(t *testing.T) {
	state := replay.NewGameState()
	// 庄家0，骰子2,3,4,5：break=(0-(2+3-1)+12)%4=0, start=2*14=28
	state.SetupWallAndDeal(sequentialWall(), [4]int{2, 3, 4, 5}, 0)
	if got := state.Hand(0)[0]; got != 28 {
		t.Errorf("first dealt tile = %d, want 28", got)
	}
}

func TestTileConservation(t *testing.T) {
	state := replay.NewGameState()
	state.SetupWallAndDeal(sequentialWall(), [4]int{1, 1, 1, 1}, 0)

	seen := map[mahjong.Tile]int{}
	for seat := int32(0); seat < 4; seat++ {
		for _, tile := range state.Hand(seat) {
			seen[tile]++
		}
	}
	if len(seen) != 53 {
		t.Fatalf("dealt %d distinct tiles, want 53", len(seen))
	}
	for tile, count := range seen {
		if count != 1 {
			t.Errorf("tile %d dealt %d times", tile, count)
		}
	}
}

func TestResetClearsState(t *testing.T) {
	state := replay.NewGameState()
	state.SetupWallAndDeal(sequentialWall(), [4]int{1, 1, 1, 1}, 0)
	state.PutOutTile(2, 40)
	state.SetLastDiscard(2, 40)
	state.SetLastActionKong(true)

	state.Reset()

	for seat := int32(0); seat < 4; seat++ {
		if len(state.Hand(seat)) != 0 || len(state.Discards(seat)) != 0 || len(state.Packs(seat)) != 0 {
			t.Errorf("seat %d not cleared", seat)
		}
	}
	if state.LastDiscardTile() != mahjong.TileNull || state.IsLastActionKong() {
		t.Error("latches not cleared")
	}
	if state.CurrentSeat() != mahjong.SeatNull {
		t.Error("current seat not cleared")
	}
}

func TestRemoveOutTileEmptyPile(t *testing.T) {
	state := replay.NewGameState()
	if state.RemoveOutTile(1) {
		t.Error("pop from empty discard pile should report false")
	}
}
