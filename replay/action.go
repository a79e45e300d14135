package replay

import (
	"fmt"

	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// claimData 吃碰杠共用的位域解码：
// 低6位左移2得到基准牌索引，6-7位是出牌者相对座位，
// 10/12/14位起的三个2位域是吃牌的副本修正。
type claimData struct {
	tileBase  mahjong.Tile
	direction int32
	o1, o2, o3 int
}

func decodeClaim(data int) claimData {
	return claimData{
		tileBase:  mahjong.Tile((data & 0x3F) << 2),
		direction: int32(data>>6) & 3,
		o1:        (data >> 10) & 3,
		o2:        (data >> 12) & 3,
		o3:        (data >> 14) & 3,
	}
}

// Processor 把单步动作施加到状态上，拥有全部位域解码和顺序副作用
type Processor struct {
	state *GameState
}

func NewProcessor(state *GameState) *Processor {
	return &Processor{state: state}
}

// ProcessAction 按动作类型分发；处理完后重排当前玩家手牌
func (p *Processor) ProcessAction(a Action) {
	lo := a.Data & 0xFF
	hi := (a.Data >> 8) & 0xFF

	switch a.Kind {
	case mahjong.ActionBegin:
		// 仅作开始标记

	case mahjong.ActionFlower:
		p.processFlower(a.Seat, mahjong.Tile((hi&15)+mahjong.FlowerBase), mahjong.Tile(lo))

	case mahjong.ActionDiscard:
		p.processDiscard(a.Seat, mahjong.Tile(lo))

	case mahjong.ActionChow:
		p.processChow(a.Seat, a.Data)

	case mahjong.ActionPon:
		if a.Data == 0 {
			p.state.SetCurrentSeat(a.Seat)
			break
		}
		p.processPon(a.Seat, decodeClaim(a.Data))

	case mahjong.ActionKon:
		if a.Data == 0 {
			p.state.SetCurrentSeat(a.Seat)
			break
		}
		p.processKon(a.Seat, a.Data)

	case mahjong.ActionHu:
		p.processHu(a.Seat, a.Data)

	case mahjong.ActionDraw:
		p.processDraw(a.Seat, mahjong.Tile(lo))

	case mahjong.ActionPass, mahjong.ActionAbandon:
		// 无状态变化

	default:
		logger.Log.Warnf("seat %d: unknown action kind %d", a.Seat, a.Kind)
	}

	p.state.SortHand(a.Seat)
}

func (p *Processor) processFlower(seat int32, flower, replacement mahjong.Tile) {
	p.state.AddFlower(seat, flower)
	if !p.state.RemoveHandTile(seat, flower) {
		logger.Log.Warnf("seat %d: flower %s not in hand", seat, flower.Name())
	}
	p.state.PutHandTile(seat, replacement)
	p.state.SetLastDrawTile(seat, replacement)
}

func (p *Processor) processDiscard(seat int32, tile mahjong.Tile) {
	p.state.SetCurrentSeat(seat)
	if !p.state.RemoveHandTile(seat, tile) {
		logger.Log.Warnf("seat %d: discard %s not in hand", seat, tile.Name())
	}
	p.state.PutOutTile(seat, tile)
	p.state.SetLastDiscard(seat, tile)
	p.state.SetLastActionKong(false)
	p.state.SetLastActionAddKong(false)
}

func (p *Processor) processChow(seat int32, data int) {
	p.state.SetCurrentSeat(seat)
	if data == 0 {
		return
	}

	cd := decodeClaim(data)
	offerTile := p.state.LastDiscardTile()

	tileBase := cd.tileBase
	// 编码角落：被吃的牌是顺子最低张时基准会下溢，此时以弃牌为基准
	if int(tileBase)-4+cd.o1 < 0 {
		tileBase = offerTile
	}

	tiles := []mahjong.Tile{
		tileBase - 4 + mahjong.Tile(cd.o1),
		tileBase + mahjong.Tile(cd.o2),
		tileBase + 4 + mahjong.Tile(cd.o3),
	}

	offerSeq := 0
	for i, t := range tiles {
		if mahjong.SameIdentity(t, offerTile) {
			offerSeq = i
			continue
		}
		if p.state.RemoveHandTilesByIdentity(seat, t.Identity(), 1) == 0 {
			logger.Log.Warnf("seat %d: chow tile %s not in hand", seat, t.Name())
		}
	}

	p.state.PushPack(seat, mahjong.Pack{Tiles: tiles, Direction: cd.direction, OfferSeq: offerSeq})
	p.popOfferDiscard(seat, cd.direction)
}

func (p *Processor) processPon(seat int32, cd claimData) {
	p.state.SetCurrentSeat(seat)

	if n := p.state.RemoveHandTilesByIdentity(seat, cd.tileBase.Identity(), 2); n < 2 {
		logger.Log.Warnf("seat %d: pon %s removed %d tiles, want 2", seat, cd.tileBase.Name(), n)
	}
	p.state.PushPack(seat, mahjong.Pack{
		Tiles:     []mahjong.Tile{cd.tileBase, cd.tileBase, cd.tileBase},
		Direction: cd.direction,
	})
	p.popOfferDiscard(seat, cd.direction)
}

func (p *Processor) processKon(seat int32, data int) {
	p.state.SetLastActionKong(true)
	p.state.SetCurrentSeat(seat)

	cd := decodeClaim(data)
	tile := cd.tileBase
	isAddKon := (data & 0x0300) == 0x0300

	switch {
	case isAddKon:
		p.processBuKon(seat, tile)

	case cd.direction == 0: // 暗杠
		if n := p.state.RemoveHandTilesByIdentity(seat, tile.Identity(), 4); n < 4 {
			logger.Log.Warnf("seat %d: concealed kon %s removed %d tiles, want 4", seat, tile.Name(), n)
		}
		p.state.PushPack(seat, mahjong.Pack{
			Tiles:     []mahjong.Tile{tile, tile, tile, tile},
			Direction: 0,
		})

	default: // 直杠
		if n := p.state.RemoveHandTilesByIdentity(seat, tile.Identity(), 3); n < 3 {
			logger.Log.Warnf("seat %d: melded kon %s removed %d tiles, want 3", seat, tile.Name(), n)
		}
		p.state.PushPack(seat, mahjong.Pack{
			Tiles:     []mahjong.Tile{tile, tile, tile, tile},
			Direction: cd.direction,
		})
		p.popOfferDiscard(seat, cd.direction)
	}
}

// processBuKon 补杠：已有碰升级为杠，记方向为5+原方向，
// 同时把杠牌登记为全局弃牌以支持抢杠检测
func (p *Processor) processBuKon(seat int32, tile mahjong.Tile) {
	if p.state.RemoveHandTilesByIdentity(seat, tile.Identity(), 1) == 0 {
		logger.Log.Warnf("seat %d: add kon %s not in hand", seat, tile.Name())
	}
	p.state.SetLastDiscard(seat, tile)
	p.state.SetLastActionAddKong(true)

	packs := p.state.Packs(seat)
	for i := range packs {
		if len(packs[i].Tiles) == 3 && packs[i].Tiles[0].Identity() == tile.Identity() {
			packs[i].Tiles = append(packs[i].Tiles, tile)
			packs[i].Direction = 5 + packs[i].Direction
			return
		}
	}
	logger.Log.Warnf("seat %d: add kon %s found no pon to upgrade", seat, tile.Name())
}

func (p *Processor) processHu(seat int32, data int) {
	p.state.SetCurrentSeat(seat)
	p.state.SetLastActionKong(false)
}

func (p *Processor) processDraw(seat int32, tile mahjong.Tile) {
	p.state.SetCurrentSeat(seat)
	p.state.PutHandTile(seat, tile)
	p.state.SetLastDrawTile(seat, tile)
}

// popOfferDiscard 从出牌者的弃牌堆移除被claimed的尾牌；空堆仅记录
func (p *Processor) popOfferDiscard(seat, direction int32) {
	offerSeat := (seat + direction) % 4
	if !p.state.RemoveOutTile(offerSeat) {
		logger.Log.Warnf("seat %d: offer discard pile already empty", offerSeat)
	}
}

// DescribeAction 动作的可读描述，步骤日志使用
func DescribeAction(a Action, state *GameState) string {
	lo := a.Data & 0xFF
	hi := (a.Data >> 8) & 0xFF

	switch a.Kind {
	case mahjong.ActionBegin:
		return "开始出牌"
	case mahjong.ActionFlower:
		flower := mahjong.Tile((hi & 15) + mahjong.FlowerBase)
		mode := "手动"
		if a.Data&0x1000 != 0 {
			mode = "自动"
		}
		return fmt.Sprintf("%s补花 %s -> %s", mode, flower.Name(), mahjong.Tile(lo).Name())
	case mahjong.ActionDiscard:
		mode := "摸打"
		if hi&1 != 0 {
			mode = "手打"
		}
		return fmt.Sprintf("%s %s", mode, mahjong.Tile(lo).Name())
	case mahjong.ActionChow, mahjong.ActionPon, mahjong.ActionKon:
		if a.Data == 0 {
			return "动作无效"
		}
		names := map[int]string{mahjong.ActionChow: "吃", mahjong.ActionPon: "碰", mahjong.ActionKon: "杠"}
		cd := decodeClaim(a.Data)
		tile := cd.tileBase + mahjong.Tile(cd.o1)
		if a.Kind == mahjong.ActionChow && state.LastDiscardTile().IsValid() {
			tile = state.LastDiscardTile()
		}
		return fmt.Sprintf("%s %s", names[a.Kind], tile.Name())
	case mahjong.ActionHu:
		mode := "手动"
		if a.Data&1 != 0 {
			mode = "自动"
		}
		if fan := a.Data >> 1; fan > 0 {
			return fmt.Sprintf("%s和 %d番", mode, fan)
		}
		return mode + "和"
	case mahjong.ActionDraw:
		if hi != 0 {
			return "逆向摸牌 " + mahjong.Tile(lo).Name()
		}
		return "摸牌 " + mahjong.Tile(lo).Name()
	case mahjong.ActionPass:
		return "过"
	case mahjong.ActionAbandon:
		return "弃"
	default:
		return fmt.Sprintf("未知动作(%d)", a.Kind)
	}
}
