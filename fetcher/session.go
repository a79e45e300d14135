package fetcher

import (
	"encoding/json"
	"fmt"

	"github.com/kevin-chtw/tw_replay/config"
	"github.com/kevin-chtw/tw_replay/storage"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// RecordParentInfo 牌谱与其所属场次的关系
type RecordParentInfo struct {
	SessionID      string `json:"session_id"`
	Title          string `json:"title"`
	OrderInSession int    `json:"order_in_session"`
}

type sessionResponse struct {
	Records []struct {
		ID string `json:"i"`
	} `json:"records"`
}

type historyItem struct {
	ID    string `json:"i"`
	Title string `json:"t"`
}

// SessionFetcher 按历史列表逐场拉取牌谱ID，维护
// sessions/<id>、sessions/all_record 与 sessions/record_parent_map
type SessionFetcher struct {
	client          *client
	store           storage.Storage
	allRecords      []string
	recordParentMap map[string]RecordParentInfo
}

func NewSessionFetcher(cfg *config.Config, store storage.Storage) *SessionFetcher {
	return &SessionFetcher{
		client:          newClient(cfg),
		store:           store,
		recordParentMap: map[string]RecordParentInfo{},
	}
}

// FetchSessions 遍历历史键下的场次并保存索引
func (f *SessionFetcher) FetchSessions(historyKey string) error {
	var history []json.RawMessage
	if err := f.store.LoadJSON(historyKey, &history); err != nil {
		return fmt.Errorf("load history %s: %w", historyKey, err)
	}

	f.allRecords = nil
	f.recordParentMap = map[string]RecordParentInfo{}

	success, failed := 0, 0
	for _, item := range history {
		var h historyItem
		if err := json.Unmarshal(item, &h); err != nil || h.ID == "" {
			continue
		}

		records, err := f.fetchSessionRecords(h.ID, h.Title)
		if err != nil {
			logger.Log.Errorf("session %s: %v", h.ID, err)
			failed++
			continue
		}
		success++

		f.allRecords = append(f.allRecords, records...)
		if err := f.store.SaveJSON(storage.KeySessions+h.ID, records); err != nil {
			return fmt.Errorf("save session %s: %w", h.ID, err)
		}
	}

	if err := f.store.SaveJSON(storage.KeyAllRecord, f.allRecords); err != nil {
		return fmt.Errorf("save all_record: %w", err)
	}
	if err := f.store.SaveJSON(storage.KeyRecordParentMap, f.recordParentMap); err != nil {
		return fmt.Errorf("save record_parent_map: %w", err)
	}

	logger.Log.Infof("sessions fetched: %d ok, %d failed, %d records", success, failed, len(f.allRecords))
	return nil
}

// AllRecords 最近一次抓取的全部牌谱ID
func (f *SessionFetcher) AllRecords() []string {
	return f.allRecords
}

func (f *SessionFetcher) fetchSessionRecords(sessionID, title string) ([]string, error) {
	endpoint := f.client.cfg.HTTP.SessionEndpoint + "/?id=" + sessionID
	data, err := f.client.post(endpoint, "")
	if err != nil {
		return nil, err
	}

	var resp sessionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("malformed session json: %w", err)
	}
	if len(resp.Records) == 0 {
		logger.Log.Warnf("session %s has no records array", sessionID)
	}

	records := make([]string, 0, len(resp.Records))
	for i, rec := range resp.Records {
		if rec.ID == "" {
			continue
		}
		records = append(records, rec.ID)
		f.recordParentMap[rec.ID] = RecordParentInfo{
			SessionID:      sessionID,
			Title:          title,
			OrderInSession: i + 1,
		}
	}
	return records, nil
}
