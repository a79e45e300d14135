package replay

import (
	"slices"

	"github.com/kevin-chtw/tw_replay/mahjong"
)

// GameState 回放的权威可变状态。只有动作处理器写它，观察者只读。
type GameState struct {
	hands        [4][]mahjong.Tile
	packs        [4][]mahjong.Pack
	discards     [4][]mahjong.Tile
	flowerCounts [4]int
	flowerTiles  [4][]mahjong.Tile
	initialHands [4][]mahjong.Tile

	wall      []mahjong.Tile
	wallFront int
	wallBack  int

	curSeat int32
	dealer  int32

	lastDrawTiles     [4]mahjong.Tile
	lastActionKong    bool
	lastActionAddKong bool

	lastDiscardTile mahjong.Tile
	lastDiscardSeat int32
}

func NewGameState() *GameState {
	s := &GameState{}
	s.Reset()
	return s
}

func (s *GameState) Reset() {
	for i := range 4 {
		s.hands[i] = s.hands[i][:0]
		s.packs[i] = s.packs[i][:0]
		s.discards[i] = s.discards[i][:0]
		s.flowerCounts[i] = 0
		s.flowerTiles[i] = s.flowerTiles[i][:0]
		s.initialHands[i] = s.initialHands[i][:0]
		s.lastDrawTiles[i] = mahjong.TileNull
	}
	s.wall = s.wall[:0]
	s.wallFront = 0
	s.wallBack = 0
	s.curSeat = mahjong.SeatNull
	s.dealer = 0
	s.lastActionKong = false
	s.lastActionAddKong = false
	s.lastDiscardTile = mahjong.TileNull
	s.lastDiscardSeat = mahjong.SeatNull
}

// SetupWallAndDeal 按骰子确定开牌位置，旋转牌墙并发初始手牌。
// 起始偏移 = (开墙位*36 + 2*骰子总和) mod 144。
func (s *GameState) SetupWallAndDeal(wall []mahjong.Tile, dice [4]int, dealer int32) {
	s.dealer = dealer

	wallBreak := (int(dealer) - (dice[0] + dice[1] - 1) + 12) % 4
	start := (wallBreak*36 + (dice[0]+dice[1]+dice[2]+dice[3])*2) % len(wall)

	s.wall = s.wall[:0]
	s.wall = append(s.wall, wall[start:]...)
	s.wall = append(s.wall, wall[:start]...)

	s.wallFront = 0
	s.wallBack = len(s.wall) - 1

	s.dealInitialTiles(dealer)
	s.curSeat = dealer
}

// dealInitialTiles 经典发牌序：每轮每家4张共3轮，再每家1张，庄家多1张
func (s *GameState) dealInitialTiles(dealer int32) {
	for range 3 {
		for offset := range 4 {
			seat := (dealer + int32(offset)) % 4
			for range 4 {
				s.hands[seat] = append(s.hands[seat], s.wall[s.wallFront])
				s.wallFront++
			}
		}
	}

	for offset := range 4 {
		seat := (dealer + int32(offset)) % 4
		s.hands[seat] = append(s.hands[seat], s.wall[s.wallFront])
		s.wallFront++
	}

	s.hands[dealer] = append(s.hands[dealer], s.wall[s.wallFront])
	s.wallFront++

	for i := range 4 {
		slices.Sort(s.hands[i])
		s.initialHands[i] = slices.Clone(s.hands[i])
	}
}

func (s *GameState) Hand(seat int32) []mahjong.Tile {
	return s.hands[seat]
}

func (s *GameState) Packs(seat int32) []mahjong.Pack {
	return s.packs[seat]
}

func (s *GameState) Discards(seat int32) []mahjong.Tile {
	return s.discards[seat]
}

func (s *GameState) FlowerCount(seat int32) int {
	return s.flowerCounts[seat]
}

func (s *GameState) FlowerTiles(seat int32) []mahjong.Tile {
	return s.flowerTiles[seat]
}

func (s *GameState) InitialHand(seat int32) []mahjong.Tile {
	return s.initialHands[seat]
}

func (s *GameState) PutHandTile(seat int32, tile mahjong.Tile) {
	s.hands[seat] = append(s.hands[seat], tile)
}

// RemoveHandTile 按精确索引删除第一张匹配的牌
func (s *GameState) RemoveHandTile(seat int32, tile mahjong.Tile) bool {
	if i := slices.Index(s.hands[seat], tile); i >= 0 {
		s.hands[seat] = slices.Delete(s.hands[seat], i, i+1)
		return true
	}
	return false
}

// RemoveHandTilesByIdentity 按牌型删除count张，返回实际删除数
func (s *GameState) RemoveHandTilesByIdentity(seat int32, identity int32, count int) int {
	removed := 0
	s.hands[seat] = slices.DeleteFunc(s.hands[seat], func(t mahjong.Tile) bool {
		if removed < count && t.Identity() == identity {
			removed++
			return true
		}
		return false
	})
	return removed
}

func (s *GameState) SortHand(seat int32) {
	slices.Sort(s.hands[seat])
}

func (s *GameState) PutOutTile(seat int32, tile mahjong.Tile) {
	s.discards[seat] = append(s.discards[seat], tile)
}

// RemoveOutTile 弹出弃牌堆尾，被吃碰杠时调用；空堆返回false
func (s *GameState) RemoveOutTile(seat int32) bool {
	if len(s.discards[seat]) == 0 {
		return false
	}
	s.discards[seat] = s.discards[seat][:len(s.discards[seat])-1]
	return true
}

func (s *GameState) PushPack(seat int32, pack mahjong.Pack) {
	s.packs[seat] = append(s.packs[seat], pack)
}

func (s *GameState) AddFlower(seat int32, tile mahjong.Tile) {
	s.flowerCounts[seat]++
	s.flowerTiles[seat] = append(s.flowerTiles[seat], tile)
}

func (s *GameState) CurrentSeat() int32 {
	return s.curSeat
}

func (s *GameState) SetCurrentSeat(seat int32) {
	s.curSeat = seat
}

func (s *GameState) Dealer() int32 {
	return s.dealer
}

func (s *GameState) WallFront() int {
	return s.wallFront
}

func (s *GameState) WallBack() int {
	return s.wallBack
}

func (s *GameState) AdvanceWallFront() {
	s.wallFront++
}

func (s *GameState) AdvanceWallBack() {
	s.wallBack--
}

// WallExhausted 海底：前指针越过后指针
func (s *GameState) WallExhausted() bool {
	return s.wallFront > s.wallBack
}

func (s *GameState) LastDrawTile(seat int32) mahjong.Tile {
	return s.lastDrawTiles[seat]
}

func (s *GameState) SetLastDrawTile(seat int32, tile mahjong.Tile) {
	s.lastDrawTiles[seat] = tile
}

func (s *GameState) IsLastActionKong() bool {
	return s.lastActionKong
}

func (s *GameState) SetLastActionKong(v bool) {
	s.lastActionKong = v
}

func (s *GameState) IsLastActionAddKong() bool {
	return s.lastActionAddKong
}

func (s *GameState) SetLastActionAddKong(v bool) {
	s.lastActionAddKong = v
}

func (s *GameState) LastDiscardTile() mahjong.Tile {
	return s.lastDiscardTile
}

func (s *GameState) LastDiscardSeat() int32 {
	return s.lastDiscardSeat
}

func (s *GameState) SetLastDiscard(seat int32, tile mahjong.Tile) {
	s.lastDiscardSeat = seat
	s.lastDiscardTile = tile
}
