package replay

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/kevin-chtw/tw_replay/mahjong"
	"github.com/kevin-chtw/tw_replay/utils"
)

// EnvelopeError 外层牌谱损坏或脚本无法解出
type EnvelopeError struct {
	Reason string
	Err    error
}

func (e *EnvelopeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record envelope: %s: %v", e.Reason, e.Err)
	}
	return "record envelope: " + e.Reason
}

func (e *EnvelopeError) Unwrap() error { return e.Err }

// ParseError 脚本缺少必需字段或字段非法
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record script: field %q %s", e.Field, e.Reason)
}

// Action 解码后的单步动作
type Action struct {
	Seat   int32
	Kind   int
	Data   int
	TimeMs int
}

// PlayerID 玩家标识；平台历史上既有字符串也有数字形式
type PlayerID string

func (p *PlayerID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = PlayerID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = PlayerID(n.String())
	return nil
}

// PlayerInfo 对局玩家元信息
type PlayerInfo struct {
	ID   PlayerID `json:"i"`
	Name string   `json:"n"`
	Elo  float64  `json:"e"`
}

// WinData 单座位的和牌数据：总番、番种映射、存档手牌
type WinData struct {
	TotalFan int            `json:"f"`
	FanMap   map[string]int `json:"t"`
	Hand     string         `json:"h"`
}

// GameConfig 对局配置，仅取标题
type GameConfig struct {
	Title string `json:"t"`
}

type script struct {
	Wall     string          `json:"w"`
	Dice     int             `json:"d"`
	Players  []PlayerInfo    `json:"p"`
	Actions  [][]json.Number `json:"a"`
	WinFlags int             `json:"b"`
	Wins     []WinData       `json:"y"`
	GameInfo int             `json:"i"`
	Config   *GameConfig     `json:"g"`
}

type envelope struct {
	Script string `json:"script"`
}

// Record 解析完成的牌谱
type Record struct {
	Wall     []mahjong.Tile
	Dice     [4]int
	Players  []PlayerInfo
	Actions  []Action
	WinFlags int
	Wins     []WinData
	GameInfo int
	Title    string

	hasWinFlags bool
	hasWins     bool
}

// HasWinFlags 脚本是否带 b 字段；缺失按荒庄处理
func (r *Record) HasWinFlags() bool { return r.hasWinFlags }

// HasWins 脚本是否带 y 字段
func (r *Record) HasWins() bool { return r.hasWins }

// WinDataOf 指定座位的和牌数据，缺失返回空值
func (r *Record) WinDataOf(seat int32) WinData {
	if int(seat) < len(r.Wins) {
		return r.Wins[seat]
	}
	return WinData{}
}

// RoundWindIndex 圈风：游戏信息值除4模4
func (r *Record) RoundWindIndex() int32 {
	return int32(r.GameInfo/4) % 4
}

// ParseRecord 解析牌谱JSON：解封装脚本并抽出类型化字段
func ParseRecord(raw []byte) (*Record, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &EnvelopeError{Reason: "malformed record json", Err: err}
	}
	if env.Script == "" {
		return nil, &EnvelopeError{Reason: "script field not found"}
	}

	plain, err := utils.DecodeScript(env.Script)
	if err != nil {
		return nil, &EnvelopeError{Reason: "decode script", Err: err}
	}
	return ParseScript(plain)
}

// ParseScript 解析已解封装的脚本JSON
func ParseScript(plain []byte) (*Record, error) {
	var s scriptRaw
	if err := json.Unmarshal(plain, &s.script); err != nil {
		return nil, &EnvelopeError{Reason: "malformed script json", Err: err}
	}
	s.present(plain)

	if s.Wall == "" {
		return nil, &ParseError{Field: "w", Reason: "missing"}
	}
	if !s.hasDice {
		return nil, &ParseError{Field: "d", Reason: "missing"}
	}
	if !s.hasActions {
		return nil, &ParseError{Field: "a", Reason: "missing"}
	}

	wallBytes, err := hex.DecodeString(s.Wall)
	if err != nil {
		return nil, &ParseError{Field: "w", Reason: "not hex: " + err.Error()}
	}
	if len(wallBytes) != mahjong.WallTileCount {
		return nil, &ParseError{Field: "w", Reason: fmt.Sprintf("wall has %d tiles, want %d", len(wallBytes), mahjong.WallTileCount)}
	}

	r := &Record{
		Dice: [4]int{
			s.Dice & 15,
			(s.Dice >> 4) & 15,
			(s.Dice >> 8) & 15,
			(s.Dice >> 12) & 15,
		},
		Players:     s.Players,
		WinFlags:    s.WinFlags,
		Wins:        s.Wins,
		GameInfo:    s.GameInfo,
		hasWinFlags: s.hasWinFlags,
		hasWins:     s.hasWins,
	}
	if s.Config != nil {
		r.Title = s.Config.Title
	}

	r.Wall = make([]mahjong.Tile, len(wallBytes))
	for i, b := range wallBytes {
		r.Wall[i] = mahjong.Tile(b)
	}

	r.Actions = make([]Action, 0, len(s.Actions))
	for _, entry := range s.Actions {
		if len(entry) < 3 {
			continue
		}
		combined, err0 := entry[0].Int64()
		data, err1 := entry[1].Int64()
		tm, err2 := entry[2].Int64()
		if err0 != nil || err1 != nil || err2 != nil {
			continue
		}
		r.Actions = append(r.Actions, Action{
			Seat:   int32(combined>>4) & 3,
			Kind:   int(combined & 15),
			Data:   int(data),
			TimeMs: int(tm),
		})
	}
	return r, nil
}

// scriptRaw 带字段出现标记的脚本解析
type scriptRaw struct {
	script
	hasDice     bool
	hasActions  bool
	hasWinFlags bool
	hasWins     bool
}

func (s *scriptRaw) present(plain []byte) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(plain, &probe); err != nil {
		return
	}
	_, s.hasDice = probe["d"]
	_, s.hasActions = probe["a"]
	_, s.hasWinFlags = probe["b"]
	_, s.hasWins = probe["y"]
}
