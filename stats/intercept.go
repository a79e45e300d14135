package stats

import (
	"fmt"
	"strings"

	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/kevin-chtw/tw_replay/replay"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// InterceptEvent 一次点和的截和探测结果。截和：按点炮者下家起的
// 顺位扫描，两家以上能以起和番和同一张牌即为截和。
type InterceptEvent struct {
	StepNumber       int     `json:"step_number"`
	DiscarderIdx     int32   `json:"discarder_idx"`
	WinnerIdx        int32   `json:"winner_idx"`
	DiscardTile      int32   `json:"discard_tile"`
	PotentialWinners []int32 `json:"potential_winners"`
	PotentialFans    []int   `json:"potential_fans"`
	IsIntercept      bool    `json:"is_intercept"`
}

func (e InterceptEvent) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Step %d] ", e.StepNumber)
	tile := mahjong.Tile(e.DiscardTile)

	if !e.IsIntercept || len(e.PotentialWinners) == 0 {
		fmt.Fprintf(&sb, "点炮者: %d 打出: %s | 无截和", e.DiscarderIdx, tile.Name())
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d %d番 截和", e.PotentialWinners[0], e.PotentialFans[0])
	for i := 1; i < len(e.PotentialWinners); i++ {
		fmt.Fprintf(&sb, " %d %d番", e.PotentialWinners[i], e.PotentialFans[i])
	}
	fmt.Fprintf(&sb, " (点炮者 %d %s)", e.DiscarderIdx, tile.Name())
	return sb.String()
}

// InterceptResult 截和统计汇总
type InterceptResult struct {
	TotalRonWins   int              `json:"total_ron_wins"`
	InterceptCount int              `json:"intercept_count"`
	InterceptRate  float64          `json:"intercept_rate"`
	Events         []InterceptEvent `json:"events"`
}

func (r InterceptResult) Summary() string {
	var sb strings.Builder
	sb.WriteString("=== 截和统计 ===\n")
	fmt.Fprintf(&sb, "总点和次数: %d\n", r.TotalRonWins)
	fmt.Fprintf(&sb, "截和次数: %d\n", r.InterceptCount)
	fmt.Fprintf(&sb, "截和率: %.2f%%\n", r.InterceptRate*100)
	for _, e := range r.Events {
		if e.IsIntercept {
			sb.WriteString(e.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// InterceptStats 截和探测器，注册为回放驱动的观察者
type InterceptStats struct {
	calc    replay.FanCalculator
	roundID string
	events  []InterceptEvent

	record *replay.Record

	lastDiscardStep int
	lastDrawStep    int
	lastDrawSeat    int32
	pending         *InterceptEvent
}

func NewInterceptStats(calc replay.FanCalculator) *InterceptStats {
	return &InterceptStats{calc: calc, lastDrawSeat: mahjong.SeatNull}
}

func (s *InterceptStats) SetRoundID(id string) {
	s.roundID = id
}

// Reset 开始新牌谱前清理本局暂存
func (s *InterceptStats) Reset(record *replay.Record) {
	s.record = record
	s.lastDiscardStep = -1
	s.lastDrawStep = -1
	s.lastDrawSeat = mahjong.SeatNull
	s.pending = nil
}

// Observer 回放观察者：跟踪摸打节奏，在正番点和处探测截和
func (s *InterceptStats) Observer(a replay.Action, step int, state *replay.GameState) {
	switch a.Kind {
	case mahjong.ActionDiscard:
		s.lastDiscardStep = step

	case mahjong.ActionFlower, mahjong.ActionDraw:
		s.lastDrawStep = step
		s.lastDrawSeat = a.Seat

	case mahjong.ActionHu:
		fan := a.Data >> 1
		if fan <= 0 {
			return
		}
		selfDrawn := s.lastDrawSeat == a.Seat && s.lastDrawStep > s.lastDiscardStep
		if selfDrawn {
			return
		}

		discarder := state.LastDiscardSeat()
		tile := state.LastDiscardTile()
		if discarder < 0 || !tile.IsValid() {
			logger.Log.Warn("skip intercept check: missing discarder info")
			return
		}
		ev := s.CheckIntercept(discarder, tile, state, step)
		ev.WinnerIdx = a.Seat
		s.pending = &ev
	}
}

// Flush 牌谱回放完成后落账本局的点和事件
func (s *InterceptStats) Flush() {
	if s.pending != nil && len(s.pending.PotentialWinners) > 0 {
		s.events = append(s.events, *s.pending)
	}
	s.pending = nil
}

// CheckIntercept 对三个非点炮座位按顺位构造假想和牌并算番
func (s *InterceptStats) CheckIntercept(discarder int32, tile mahjong.Tile, state *replay.GameState, step int) InterceptEvent {
	event := InterceptEvent{
		StepNumber:   step,
		DiscarderIdx: discarder,
		DiscardTile:  int32(tile),
		WinnerIdx:    mahjong.SeatNull,
	}

	logger.Log.Infof("=== 检测截和 Step %d: 点炮者 %d 打出 %s ===", step, discarder, tile.Name())

	for offset := int32(1); offset <= 3; offset++ {
		seat := (discarder + offset) % 4
		fan := s.calculateWinFan(seat, tile, state)
		if fan >= mahjong.MinWinFan {
			event.PotentialWinners = append(event.PotentialWinners, seat)
			event.PotentialFans = append(event.PotentialFans, fan)
			logger.Log.Infof("  座位 %d 可和牌, 番数: %d", seat, fan)
		}
	}

	if len(event.PotentialWinners) > 0 {
		event.WinnerIdx = event.PotentialWinners[0]
	}
	if len(event.PotentialWinners) > 1 {
		event.IsIntercept = true
		logger.Log.Warnf("*** 截和发生 round=%s step=%d: %d 家能和 ***",
			s.roundID, step, len(event.PotentialWinners))
	} else if len(event.PotentialWinners) == 0 {
		logger.Log.Errorf("无人能和牌 round=%s step=%d discarder=%d tile=%s",
			s.roundID, step, discarder, tile.Name())
	}
	return event
}

func (s *InterceptStats) calculateWinFan(seat int32, tile mahjong.Tile, state *replay.GameState) int {
	hand := replay.BuildSeatHandString(state, s.record, seat, tile)
	total, _, err := s.calc.Calculate(hand)
	if err != nil {
		logger.Log.Errorf("seat %d: fan calculation failed for %q: %v", seat, hand, err)
		return 0
	}
	return total
}

// Result 汇总：有人能和的点和计入总数，两家以上计为截和
func (s *InterceptStats) Result() InterceptResult {
	result := InterceptResult{Events: s.events}
	for _, e := range s.events {
		if len(e.PotentialWinners) > 0 {
			result.TotalRonWins++
			if e.IsIntercept {
				result.InterceptCount++
			}
		}
	}
	if result.TotalRonWins > 0 {
		result.InterceptRate = float64(result.InterceptCount) / float64(result.TotalRonWins)
	}
	return result
}

// ClearEvents 清空累计事件
func (s *InterceptStats) ClearEvents() {
	s.events = nil
}
