package fetcher

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kevin-chtw/tw_replay/config"
	"github.com/kevin-chtw/tw_replay/storage"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// DateRangeMs 历史抓取的时间窗口，毫秒
type DateRangeMs struct {
	StartMs int64
	EndMs   int64
}

// ParseDateRange 解析YYYYMMDD起止日期；都为空返回nil
func ParseDateRange(startDate, endDate string) (*DateRangeMs, error) {
	if startDate == "" && endDate == "" {
		return nil, nil
	}
	start, err := time.ParseInLocation("20060102", startDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("start date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation("20060102", endDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("end date %q: %w", endDate, err)
	}
	endOfDay := end.Add(24*time.Hour - time.Millisecond)
	if start.After(endOfDay) {
		return nil, fmt.Errorf("start date after end date")
	}
	return &DateRangeMs{StartMs: start.UnixMilli(), EndMs: endOfDay.UnixMilli()}, nil
}

// historyPage 历史页应答
type historyPage struct {
	Games []json.RawMessage `json:"games"`
}

type gameStart struct {
	StartTime int64 `json:"start_time"`
}

// HistoryFetcher 翻页拉取历史对局列表，按时间窗口过滤后
// 存到 history/<window>
type HistoryFetcher struct {
	client  *client
	store   storage.Storage
	records []json.RawMessage
}

func NewHistoryFetcher(cfg *config.Config, store storage.Storage) *HistoryFetcher {
	return &HistoryFetcher{client: newClient(cfg), store: store}
}

// FetchAll 从第一页起抓到窗口边界或maxPages为止，返回存储键
func (f *HistoryFetcher) FetchAll(window string, dateRange *DateRangeMs, maxPages int) (string, error) {
	f.records = nil

	for page := 0; maxPages <= 0 || page < maxPages; page++ {
		reachedEnd, err := f.fetchPage(page, dateRange)
		if err != nil {
			return "", err
		}
		if reachedEnd {
			break
		}
	}

	key := storage.KeyHistory + window
	if err := f.store.SaveJSON(key, f.records); err != nil {
		return "", fmt.Errorf("save history %s: %w", key, err)
	}
	logger.Log.Infof("saved %d history games to %s", len(f.records), key)
	return key, nil
}

// fetchPage 抓单页；页内最早时间早于窗口起点说明翻到底了
func (f *HistoryFetcher) fetchPage(page int, dateRange *DateRangeMs) (reachedEnd bool, err error) {
	body := ""
	if page > 0 {
		body = "p=" + strconv.Itoa(page)
	}
	logger.Log.Infof("fetching history page %d", page+1)

	data, err := f.client.post(f.client.cfg.HTTP.HistoryEndpoint, body)
	if err != nil {
		return false, err
	}

	var resp historyPage
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("history page %d: malformed json: %w", page, err)
	}
	if len(resp.Games) == 0 {
		return true, nil
	}

	minStart := int64(-1)
	added := 0
	for _, game := range resp.Games {
		var gs gameStart
		hasStart := json.Unmarshal(game, &gs) == nil && gs.StartTime > 0
		if hasStart && (minStart < 0 || gs.StartTime < minStart) {
			minStart = gs.StartTime
		}

		if dateRange != nil {
			if !hasStart || gs.StartTime < dateRange.StartMs || gs.StartTime > dateRange.EndMs {
				continue
			}
		}
		f.records = append(f.records, game)
		added++
	}
	logger.Log.Infof("history page %d: %d games, %d in window", page+1, len(resp.Games), added)

	if dateRange != nil && minStart >= 0 && minStart < dateRange.StartMs {
		return true, nil
	}
	return false, nil
}
