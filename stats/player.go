package stats

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/kevin-chtw/tw_replay/replay"
	"github.com/kevin-chtw/tw_replay/storage"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// PlayerStatsOptions 玩家统计的输入参数
type PlayerStatsOptions struct {
	RecordDir string
	Limit     int
}

// FanSummary 单局的代表番种
type FanSummary struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Count  int    `json:"count"`
}

// WinEntry 一次和牌记录
type WinEntry struct {
	RecordID    string       `json:"record_id"`
	SessionID   string       `json:"session_id"`
	TimestampMs int64        `json:"timestamp_ms"`
	WinType     string       `json:"win_type"`
	TotalFan    int          `json:"total_fan"`
	HandRaw     string       `json:"hand_raw"`
	MaxFans     []FanSummary `json:"max_fans"`
}

// EloPoint 单局后的Elo采样
type EloPoint struct {
	RecordID    string  `json:"record_id"`
	SessionID   string  `json:"session_id"`
	TimestampMs int64   `json:"timestamp_ms"`
	Elo         float64 `json:"elo"`
}

// PlayerStats 玩家累计统计，存储键 player/<id>
type PlayerStats struct {
	PlayerID   string  `json:"player_id"`
	Name       string  `json:"name"`
	CurrentElo float64 `json:"current_elo"`

	TotalRounds       int   `json:"total_rounds"`
	WinCount          int   `json:"win_count"`
	RonWinCount       int   `json:"ron_win_count"`
	TsumoWinCount     int   `json:"tsumo_win_count"`
	DealInCount       int   `json:"deal_in_count"`
	TsumoAgainstCount int   `json:"tsumo_against_count"`
	DrawCount         int   `json:"draw_count"`
	TotalSteps        int64 `json:"total_steps"`
	TotalActionMs     int64 `json:"total_action_ms"`

	EloHistory       []EloPoint `json:"elo_history"`
	ProcessedRecords []string   `json:"processed_records"`
	Wins             []WinEntry `json:"wins"`

	processedSet map[string]bool
}

// recordEnvelope 牌谱外层的统计所需字段
type recordEnvelope struct {
	ID          string `json:"id"`
	SessionID   string `json:"belongs"`
	TimestampMs int64  `json:"t"`
	Script      string `json:"script"`
}

// PlayerStatsRunner 扫描牌谱目录并归并到玩家累计
type PlayerStatsRunner struct {
	store storage.Storage
	stats map[string]*PlayerStats
}

func NewPlayerStatsRunner(store storage.Storage) *PlayerStatsRunner {
	return &PlayerStatsRunner{store: store, stats: map[string]*PlayerStats{}}
}

// Run 遍历目录下全部牌谱并写回玩家统计
func (r *PlayerStatsRunner) Run(opts PlayerStatsOptions) error {
	seen := 0
	err := filepath.WalkDir(opts.RecordDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if opts.Limit > 0 && seen >= opts.Limit {
			return fs.SkipAll
		}
		seen++

		if err := r.processFile(path); err != nil {
			logger.Log.Warnf("player stats: skip %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", opts.RecordDir, err)
	}

	for id, ps := range r.stats {
		if err := r.store.SaveJSON(storage.KeyPlayer+id, ps); err != nil {
			return fmt.Errorf("save player %s: %w", id, err)
		}
	}
	logger.Log.Infof("player stats: processed %d records, %d players", seen, len(r.stats))
	return nil
}

func (r *PlayerStatsRunner) processFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var env recordEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse envelope: %w", err)
	}
	if env.ID == "" {
		env.ID = filepath.Base(path)
	}

	record, err := replay.ParseRecord(raw)
	if err != nil {
		return err
	}
	return r.applyRecord(&env, record)
}

func (r *PlayerStatsRunner) applyRecord(env *recordEnvelope, record *replay.Record) error {
	winners, discarder := parseWinFlags(record.WinFlags)
	isDraw := len(winners) == 0
	isTsumo := !isDraw && (discarder < 0 || containsSeat(winners, discarder))

	stepsBySeat, durations := countSteps(record.Actions)

	for seat, p := range record.Players {
		id := string(p.ID)
		if id == "" {
			continue
		}
		ps := r.loadPlayer(id, p.Name)
		if ps.processedSet[env.ID] {
			continue
		}
		ps.processedSet[env.ID] = true
		ps.ProcessedRecords = append(ps.ProcessedRecords, env.ID)

		ps.TotalRounds++
		ps.TotalSteps += stepsBySeat[seat]
		ps.TotalActionMs += durations[seat]
		ps.CurrentElo = p.Elo
		ps.EloHistory = append(ps.EloHistory, EloPoint{
			RecordID:    env.ID,
			SessionID:   env.SessionID,
			TimestampMs: env.TimestampMs,
			Elo:         p.Elo,
		})

		seat32 := int32(seat)
		switch {
		case isDraw:
			ps.DrawCount++
		case containsSeat(winners, seat32):
			r.applyWin(ps, env, record, seat32, discarder)
		case isTsumo:
			ps.TsumoAgainstCount++
		case seat32 == discarder:
			ps.DealInCount++
		}
	}
	return nil
}

func (r *PlayerStatsRunner) applyWin(ps *PlayerStats, env *recordEnvelope, record *replay.Record, seat, discarder int32) {
	ps.WinCount++
	winType := "ron"
	if discarder < 0 || discarder == seat {
		winType = "tsumo"
		ps.TsumoWinCount++
	} else {
		ps.RonWinCount++
	}

	winData := record.WinDataOf(seat)
	ps.Wins = append(ps.Wins, WinEntry{
		RecordID:    env.ID,
		SessionID:   env.SessionID,
		TimestampMs: env.TimestampMs,
		WinType:     winType,
		TotalFan:    winData.TotalFan,
		HandRaw:     winData.Hand,
		MaxFans:     extractMaxFans(winData),
	})
}

func (r *PlayerStatsRunner) loadPlayer(id, name string) *PlayerStats {
	if ps, ok := r.stats[id]; ok {
		return ps
	}

	ps := &PlayerStats{PlayerID: id, Name: name, CurrentElo: 1500}
	if r.store.Exists(storage.KeyPlayer + id) {
		if err := r.store.LoadJSON(storage.KeyPlayer+id, ps); err != nil {
			logger.Log.Warnf("player stats: reload %s failed: %v", id, err)
		}
	}
	ps.Name = name
	ps.processedSet = make(map[string]bool, len(ps.ProcessedRecords))
	for _, rec := range ps.ProcessedRecords {
		ps.processedSet[rec] = true
	}
	r.stats[id] = ps
	return ps
}

// extractMaxFans 取番值最高的与24番以上的番种作为代表
func extractMaxFans(winData replay.WinData) []FanSummary {
	maxPoints := 0
	type parsed struct {
		name          string
		points, count int
	}
	var all []parsed
	for idStr, packedVal := range winData.FanMap {
		id := 0
		if _, err := fmt.Sscanf(idStr, "%d", &id); err != nil {
			continue
		}
		if id == 83 {
			continue
		}
		p := parsed{
			name:   mahjong.FanName(id),
			points: packedVal & 0xFF,
			count:  ((packedVal >> 8) & 0xFF) + 1,
		}
		all = append(all, p)
		maxPoints = max(maxPoints, p.points)
	}

	var fans []FanSummary
	for _, p := range all {
		if p.points >= 24 || p.points == maxPoints {
			fans = append(fans, FanSummary{Name: p.name, Points: p.points, Count: p.count})
		}
	}
	return fans
}

func parseWinFlags(flags int) (winners []int32, discarder int32) {
	discarder = mahjong.SeatNull
	for i := int32(0); i < 4; i++ {
		if flags&(1<<i) != 0 {
			winners = append(winners, i)
		}
		if discarder < 0 && flags&(1<<(i+4)) != 0 {
			discarder = i
		}
	}
	return
}

func countSteps(actions []replay.Action) (steps [4]int64, durations [4]int64) {
	prev := 0
	for _, a := range actions {
		steps[a.Seat]++
		if delta := a.TimeMs - prev; delta >= 0 {
			durations[a.Seat] += int64(delta)
			prev = a.TimeMs
		}
	}
	return
}

func containsSeat(seats []int32, seat int32) bool {
	for _, s := range seats {
		if s == seat {
			return true
		}
	}
	return false
}
