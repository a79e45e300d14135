package fetcher

import (
	"encoding/json"
	"fmt"

	"github.com/kevin-chtw/tw_replay/config"
	"github.com/kevin-chtw/tw_replay/storage"
	"github.com/kevin-chtw/tw_replay/utils"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

// RecordFetcher 拉取单条牌谱。原始应答存 origin/<id>，
// 解开脚本后的副本（附step字段）存 record/<id>。
type RecordFetcher struct {
	client *client
	store  storage.Storage
}

func NewRecordFetcher(cfg *config.Config, store storage.Storage) *RecordFetcher {
	return &RecordFetcher{client: newClient(cfg), store: store}
}

// FetchRecord 拉取并保存一条牌谱；已存在时跳过
func (f *RecordFetcher) FetchRecord(recordID string) error {
	key := storage.KeyRecord + recordID
	if f.store.Exists(key) {
		logger.Log.Debugf("record %s already stored, skip", recordID)
		return nil
	}

	logger.Log.Infof("fetching record %s", recordID)
	body, err := f.client.post(f.client.cfg.HTTP.RecordEndpoint, "id="+recordID)
	if err != nil {
		return fmt.Errorf("fetch record %s: %w", recordID, err)
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal(body, &record); err != nil {
		return fmt.Errorf("record %s: malformed json: %w", recordID, err)
	}

	if err := f.store.SaveJSON(storage.KeyOrigin+recordID, json.RawMessage(body)); err != nil {
		return fmt.Errorf("save origin %s: %w", recordID, err)
	}

	// 预解脚本附加到step字段，离线工具不再重复解压
	if rawScript, ok := record["script"]; ok {
		var encoded string
		if err := json.Unmarshal(rawScript, &encoded); err == nil {
			if plain, err := utils.DecodeScript(encoded); err == nil {
				record["step"] = json.RawMessage(plain)
			} else {
				logger.Log.Warnf("record %s: script decode failed: %v", recordID, err)
			}
		}
	} else {
		logger.Log.Warnf("record %s: missing script field", recordID)
	}

	if err := f.store.SaveJSON(key, record); err != nil {
		return fmt.Errorf("save record %s: %w", recordID, err)
	}
	logger.Log.Infof("saved record %s", recordID)
	return nil
}

// FetchRecords 批量拉取，失败逐条记录不中断
func (f *RecordFetcher) FetchRecords(recordIDs []string) (fetched int) {
	for _, id := range recordIDs {
		if err := f.FetchRecord(id); err != nil {
			logger.Log.Errorf("%v", err)
			continue
		}
		fetched++
	}
	return fetched
}
