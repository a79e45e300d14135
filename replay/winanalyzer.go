package replay

import (
	"slices"
	"strconv"

	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// FanCalculator 外部算番库的契约。实现方解析完整手牌串，
// 返回总番与逐番种明细；非和牌型返回0番不报错。
type FanCalculator interface {
	Calculate(hand string) (int, []GBFanDetail, error)
}

// WinAnalyzer 读取终局状态，构造环境串并对照声明番与计算番
type WinAnalyzer struct {
	calc FanCalculator

	winnerIdx int32
	winTile   mahjong.Tile
	selfDrawn bool

	state  *GameState
	record *Record
}

func NewWinAnalyzer(calc FanCalculator) *WinAnalyzer {
	return &WinAnalyzer{calc: calc, winnerIdx: mahjong.SeatNull, winTile: mahjong.TileNull}
}

func (w *WinAnalyzer) SetWinInfo(winnerIdx int32, winTile mahjong.Tile, selfDrawn bool) {
	w.winnerIdx = winnerIdx
	w.winTile = winTile
	w.selfDrawn = selfDrawn
}

func (w *WinAnalyzer) SetState(state *GameState) {
	w.state = state
}

func (w *WinAnalyzer) SetRecord(record *Record) {
	w.record = record
}

func (w *WinAnalyzer) Reset() {
	w.winnerIdx = mahjong.SeatNull
	w.winTile = mahjong.TileNull
	w.selfDrawn = false
}

// Analyze 产出和牌分析；未设置和牌信息时 WinnerIdx 为 -1
func (w *WinAnalyzer) Analyze() *WinAnalysis {
	result := &WinAnalysis{WinnerIdx: mahjong.SeatNull}
	if w.winnerIdx < 0 || w.state == nil || w.record == nil {
		return result
	}

	result.WinnerIdx = w.winnerIdx
	if int(w.winnerIdx) < len(w.record.Players) {
		result.WinnerName = w.record.Players[w.winnerIdx].Name
	}
	result.WinnerWind = w.seatWindLetter(w.winnerIdx)
	result.FlowerCount = w.state.FlowerCount(w.winnerIdx)

	winData := w.record.WinDataOf(w.winnerIdx)
	result.TotalFan = winData.TotalFan

	result.FormattedHand = mahjong.TilesName(w.state.Hand(w.winnerIdx))
	result.HandString = w.buildHandString()
	result.EnvFlag = mahjong.BuildEnvFlag(
		w.roundWindLetter(), w.seatWindLetter(w.winnerIdx),
		w.selfDrawn, w.IsLastCopy(w.winTile), w.IsSeaBottom(), w.IsRobbingKong())
	result.FanDetails = w.extractFanDetails(winData)

	for _, d := range result.FanDetails {
		result.BaseFan += d.Points * d.Count
	}

	total, details, err := w.calc.Calculate(result.HandString)
	if err != nil {
		logger.Log.Errorf("fan calculation failed for %q: %v", result.HandString, err)
	}
	result.CalculatedFan = total
	result.GBFanDetails = details

	if result.CalculatedFan != result.TotalFan {
		logger.Log.Infof("fan mismatch for seat %d: declared %d, calculated %d (%s)",
			w.winnerIdx, result.TotalFan, result.CalculatedFan, result.HandString)
	}
	return result
}

// IsLastCopy 和牌是否为绝张：副露中同牌型的张数（扣除副露里来自
// 弃牌的那张）加上各家弃牌，自摸达3张、点和达4张即绝张。
// 任一家有该牌型暗杠直接算绝张；与抢杠互斥。
func (w *WinAnalyzer) IsLastCopy(tile mahjong.Tile) bool {
	if w.state == nil || w.IsRobbingKong() {
		return false
	}

	identity := tile.Identity()
	exposed := 0
	for seat := range int32(4) {
		for _, pack := range w.state.Packs(seat) {
			inPack := 0
			for _, t := range pack.Tiles {
				if t.Identity() == identity {
					inPack++
				}
			}
			if pack.IsAnKon() && inPack == 4 {
				return true
			}
			exposed += inPack
			if inPack > 0 && pack.OfferSeq < len(pack.Tiles) &&
				pack.Tiles[pack.OfferSeq].Identity() == identity && pack.Direction > 0 {
				exposed-- // 副露中来自弃牌的一张不重复计
			}
		}
		for _, t := range w.state.Discards(seat) {
			if t.Identity() == identity {
				exposed++
			}
		}
	}

	required := 4
	if w.selfDrawn {
		required = 3
	}
	if exposed > required {
		logger.Log.Warnf("last copy check: %d exposed copies of %s exceeds %d",
			exposed, tile.Name(), required)
	}
	return exposed >= required
}

// IsSeaBottom 海底：牌墙耗尽
func (w *WinAnalyzer) IsSeaBottom() bool {
	return w.state != nil && w.state.WallExhausted()
}

// IsRobbingKong 抢杠：非自摸且前一动作是补杠
func (w *WinAnalyzer) IsRobbingKong() bool {
	if w.selfDrawn || w.state == nil {
		return false
	}
	return w.state.IsLastActionAddKong()
}

func (w *WinAnalyzer) buildHandString() string {
	return mahjong.BuildFullHandString(
		w.state.Hand(w.winnerIdx),
		w.state.Packs(w.winnerIdx),
		w.winTile,
		w.roundWindLetter(), w.seatWindLetter(w.winnerIdx),
		w.selfDrawn, w.IsLastCopy(w.winTile), w.IsSeaBottom(), w.IsRobbingKong(),
		0, nil)
}

func (w *WinAnalyzer) extractFanDetails(winData WinData) []FanDetail {
	details := make([]FanDetail, 0, len(winData.FanMap))
	for idStr, packed := range winData.FanMap {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			logger.Log.Warnf("bad fan id %q in win data", idStr)
			continue
		}
		if id == 83 { // 历史遗留的重复番种
			continue
		}
		details = append(details, FanDetail{
			ID:     id,
			Name:   mahjong.FanName(id),
			Points: packed & 0xFF,
			Count:  ((packed >> 8) & 0xFF) + 1,
		})
	}
	slices.SortFunc(details, func(a, b FanDetail) int { return a.ID - b.ID })
	return details
}

func (w *WinAnalyzer) seatWindLetter(seat int32) string {
	return mahjong.WindLetter(mahjong.SeatWind(seat, w.state.Dealer()))
}

func (w *WinAnalyzer) roundWindLetter() string {
	if w.record == nil {
		return "E"
	}
	return mahjong.WindLetter(w.record.RoundWindIndex())
}

// BuildSeatHandString 为指定座位构造假想的点和手牌串，截和探测使用
func BuildSeatHandString(state *GameState, record *Record, seat int32, winTile mahjong.Tile) string {
	w := &WinAnalyzer{state: state, record: record, winnerIdx: seat, winTile: winTile, selfDrawn: false}

	hand := slices.Clone(state.Hand(seat))
	return mahjong.BuildFullHandString(
		hand,
		state.Packs(seat),
		winTile,
		w.roundWindLetter(), w.seatWindLetter(seat),
		false, w.IsLastCopy(winTile), w.IsSeaBottom(), w.IsRobbingKong(),
		0, nil)
}
