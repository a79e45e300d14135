package replay

// StepLog 单步日志：动作描述与该座位的局面快照
type StepLog struct {
	StepNumber   int      `json:"step_number"`
	Seat         int32    `json:"seat"`
	PlayerName   string   `json:"player_name"`
	PlayerWind   string   `json:"player_wind"`
	ActionKind   int      `json:"action_kind"`
	Description  string   `json:"description"`
	ElapsedMs    int      `json:"elapsed_ms"`
	HandTiles    []string `json:"hand_tiles"`
	PackTiles    []string `json:"pack_tiles"`
	DiscardTiles []string `json:"discard_tiles"`
}

// FanDetail 牌谱声明的番种明细
type FanDetail struct {
	ID     int    `json:"fan_id"`
	Name   string `json:"fan_name"`
	Points int    `json:"fan_points"`
	Count  int    `json:"count"`
}

// GBFanDetail 算番库独立计算的番种明细
type GBFanDetail struct {
	Name   string `json:"fan_name"`
	Points int    `json:"fan_points"`
	Count  int    `json:"count"`
}

// WinAnalysis 和牌分析结果。WinnerIdx为-1表示荒庄或无有效和牌。
type WinAnalysis struct {
	WinnerIdx     int32         `json:"winner_idx"`
	WinnerName    string        `json:"winner_name"`
	WinnerWind    string        `json:"winner_wind"`
	TotalFan      int           `json:"total_fan"`
	BaseFan       int           `json:"base_fan"`
	CalculatedFan int           `json:"calculated_fan"`
	FlowerCount   int           `json:"flower_count"`
	FormattedHand string        `json:"formatted_hand"`
	FanDetails    []FanDetail   `json:"fan_details"`
	GBFanDetails  []GBFanDetail `json:"gb_fan_details"`
	HandString    string        `json:"hand_string"`
	EnvFlag       string        `json:"env_flag"`
}

// GameLog 整局回放日志
type GameLog struct {
	Title       string       `json:"title"`
	PlayerNames []string     `json:"player_names"`
	DealerIdx   int32        `json:"dealer_idx"`
	StepLogs    []StepLog    `json:"step_logs"`
	WinAnalysis *WinAnalysis `json:"win_analysis"`
}
