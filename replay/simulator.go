package replay

import (
	"fmt"

	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// Observer 每步动作后按注册顺序回调；观察者只读状态
type Observer func(a Action, step int, state *GameState)

// Result 单局回放结果
type Result struct {
	GameLog     GameLog
	WinAnalysis *WinAnalysis
}

// Simulator 回放驱动：发牌、逐步分发、胜负判定、观察者发布
type Simulator struct {
	state     *GameState
	processor *Processor
	analyzer  *WinAnalyzer
	observers []Observer

	record   *Record
	gameLog  GameLog
	stepLogs []StepLog

	winnerSet bool
}

func NewSimulator(calc FanCalculator) *Simulator {
	state := NewGameState()
	return &Simulator{
		state:     state,
		processor: NewProcessor(state),
		analyzer:  NewWinAnalyzer(calc),
	}
}

// AddObserver 注册观察者，回放中按注册顺序调用
func (s *Simulator) AddObserver(fn Observer) {
	s.observers = append(s.observers, fn)
}

func (s *Simulator) ClearObservers() {
	s.observers = nil
}

// State 当前回放状态，观察者之外的只读访问
func (s *Simulator) State() *GameState {
	return s.state
}

// RoundWindIndex 当前牌谱的圈风
func (s *Simulator) RoundWindIndex() int32 {
	if s.record == nil {
		return 0
	}
	return s.record.RoundWindIndex()
}

// Simulate 完整回放一条牌谱。解析失败返回错误；
// 回放中的异常只记录日志不中断。
func (s *Simulator) Simulate(raw []byte) (*Result, error) {
	record, err := ParseRecord(raw)
	if err != nil {
		return nil, err
	}
	return s.SimulateRecord(record)
}

// SimulateRecord 回放已解析的牌谱
func (s *Simulator) SimulateRecord(record *Record) (*Result, error) {
	s.record = record
	s.state.Reset()
	s.analyzer.Reset()
	s.stepLogs = nil
	s.winnerSet = false
	s.gameLog = GameLog{Title: record.Title}

	const dealer = int32(0)
	s.state.SetupWallAndDeal(record.Wall, record.Dice, dealer)
	s.gameLog.DealerIdx = s.state.Dealer()

	s.gameLog.PlayerNames = make([]string, 0, len(record.Players))
	for i, p := range record.Players {
		s.gameLog.PlayerNames = append(s.gameLog.PlayerNames, p.Name)
		logger.Log.Infof("%s家: %s", mahjong.WindName(int32(i)), p.Name)
	}

	s.processAllActions()
	s.extractWinInfoFromScript()

	s.analyzer.SetState(s.state)
	s.analyzer.SetRecord(record)
	analysis := s.analyzer.Analyze()

	s.gameLog.StepLogs = s.stepLogs
	s.gameLog.WinAnalysis = analysis
	return &Result{GameLog: s.gameLog, WinAnalysis: analysis}, nil
}

func (s *Simulator) processAllActions() {
	prevTime := 0
	for idx, action := range s.record.Actions {
		step := idx + 1
		elapsed := action.TimeMs - prevTime

		desc := DescribeAction(action, s.state)
		s.processor.ProcessAction(action)
		s.advanceWallPointers(action)
		s.logStep(step, action, elapsed, desc)

		for _, fn := range s.observers {
			fn(action, step, s.state)
		}

		if action.Kind == mahjong.ActionHu {
			s.handleHu(idx, action)
		}
		prevTime = action.TimeMs
	}
}

// advanceWallPointers 摸牌走前指针，补花与杠后摸牌走后指针
func (s *Simulator) advanceWallPointers(a Action) {
	switch a.Kind {
	case mahjong.ActionFlower:
		s.state.AdvanceWallBack()
	case mahjong.ActionDraw:
		if (a.Data>>8)&0xFF != 0 {
			s.state.AdvanceWallBack()
		} else {
			s.state.AdvanceWallFront()
		}
	}
}

// handleHu 和牌声明：0番为错和继续回放，正番记录首个有效和牌；
// 继续处理剩余动作以覆盖一炮多响。
func (s *Simulator) handleHu(idx int, action Action) {
	fan := action.Data >> 1
	winner := action.Seat

	if fan == 0 {
		logger.Log.Warnf("seat %d declared an invalid win (0 fan), replay continues", winner)
		return
	}

	selfDrawn := s.deduceSelfDrawn(idx, winner)
	selfDrawn = s.crossCheckSelfDrawn(winner, selfDrawn)

	winTile := s.state.LastDiscardTile()
	if selfDrawn {
		winTile = s.state.LastDrawTile(winner)
	}

	logger.Log.Infof("seat %d won with %d fan, tile %s, self-drawn=%v",
		winner, fan, winTile.Name(), selfDrawn)

	if !s.winnerSet {
		s.analyzer.SetWinInfo(winner, winTile, selfDrawn)
		s.winnerSet = true
	}
}

// deduceSelfDrawn 逆扫动作流，跳过过与弃；首个非跳过的前驱
// 是同座位摸牌（补花或摸牌）则为自摸
func (s *Simulator) deduceSelfDrawn(idx int, winner int32) bool {
	for i := idx - 1; i >= 0; i-- {
		prev := s.record.Actions[i]
		if prev.Kind == mahjong.ActionPass || prev.Kind == mahjong.ActionAbandon {
			continue
		}
		return (prev.Kind == mahjong.ActionDraw || prev.Kind == mahjong.ActionFlower) &&
			prev.Seat == winner
	}
	return false
}

// crossCheckSelfDrawn 与脚本win_flags对照：低4位为和牌者位图，
// 4-7位为点炮者位图；不一致时以脚本为准
func (s *Simulator) crossCheckSelfDrawn(winner int32, deduced bool) bool {
	if !s.record.HasWinFlags() {
		return deduced
	}

	flags := s.record.WinFlags
	scriptWinner, scriptDiscarder := int32(-1), int32(-1)
	for i := int32(0); i < 4; i++ {
		if flags&(1<<i) != 0 {
			scriptWinner = i
		}
		if flags&(1<<(i+4)) != 0 {
			scriptDiscarder = i
		}
	}

	if scriptWinner < 0 || scriptWinner != winner {
		return deduced
	}

	scriptSelfDrawn := scriptDiscarder < 0 || scriptDiscarder == scriptWinner
	if deduced != scriptSelfDrawn {
		logger.Log.Errorf("self-drawn mismatch for seat %d: deduced=%v script=%v (discarder=%d), using script",
			winner, deduced, scriptSelfDrawn, scriptDiscarder)
		return scriptSelfDrawn
	}
	return deduced
}

// extractWinInfoFromScript 动作流没有产生和牌信息时回落到脚本数据
func (s *Simulator) extractWinInfoFromScript() {
	if s.winnerSet || !s.record.HasWins() {
		return
	}

	flags := s.record.WinFlags
	if flags&0x0F == 0 {
		logger.Log.Info("no winner in script data (荒庄)")
		return
	}

	winner := int32(-1)
	for i := int32(0); i < 4; i++ {
		if flags&(1<<i) != 0 {
			winner = i
			break
		}
	}
	if winner < 0 {
		return
	}

	discarder := int32(-1)
	for i := int32(0); i < 4; i++ {
		if flags&(1<<(i+4)) != 0 {
			discarder = i
			break
		}
	}

	selfDrawn := discarder < 0 || discarder == winner
	winTile := s.state.LastDiscardTile()
	if selfDrawn {
		winTile = s.state.LastDrawTile(winner)
	}
	if !winTile.IsValid() {
		logger.Log.Warn("cannot determine win tile from script data")
		return
	}

	s.analyzer.SetWinInfo(winner, winTile, selfDrawn)
	s.winnerSet = true
}

func (s *Simulator) logStep(step int, a Action, elapsed int, desc string) {
	name := ""
	if int(a.Seat) < len(s.gameLog.PlayerNames) {
		name = s.gameLog.PlayerNames[a.Seat]
	}
	wind := mahjong.WindName(mahjong.SeatWind(a.Seat, s.state.Dealer()))

	logger.Log.Infof("[Step %d] %s家 %s (+%.1fs) %s", step, wind, name, float64(elapsed)/1000.0, desc)

	packs := s.state.Packs(a.Seat)
	packStrs := make([]string, len(packs))
	for i, p := range packs {
		packStrs[i] = mahjong.PackString(p)
	}

	s.stepLogs = append(s.stepLogs, StepLog{
		StepNumber:   step,
		Seat:         a.Seat,
		PlayerName:   name,
		PlayerWind:   wind,
		ActionKind:   a.Kind,
		Description:  desc,
		ElapsedMs:    elapsed,
		HandTiles:    mahjong.TilesString(s.state.Hand(a.Seat)),
		PackTiles:    packStrs,
		DiscardTiles: mahjong.TilesString(s.state.Discards(a.Seat)),
	})
}

// SummaryLine 单行回放摘要，CLI输出使用
func (r *Result) SummaryLine() string {
	wa := r.WinAnalysis
	if wa == nil || wa.WinnerIdx < 0 {
		return fmt.Sprintf("%s: 荒庄 (%d steps)", r.GameLog.Title, len(r.GameLog.StepLogs))
	}
	return fmt.Sprintf("%s: %s家 %s 和 %d番(算番 %d) %s",
		r.GameLog.Title, wa.WinnerWind, wa.WinnerName, wa.TotalFan, wa.CalculatedFan, wa.HandString)
}
