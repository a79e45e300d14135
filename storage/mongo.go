package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStorage 同一KV契约的mongo后端，键作为文档_id，值存JSON文本。
// 大批量牌谱归档时替代文件树。
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

type mongoDoc struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

func NewMongoStorage(uri, database, collection string) (*MongoStorage, error) {
	timeout := 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo %s: %w", uri, err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		timeout:    timeout,
	}, nil
}

func (s *MongoStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *MongoStorage) SaveJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	ctx, cancel := s.ctx()
	defer cancel()
	_, err = s.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		mongoDoc{Key: key, Value: string(data)},
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *MongoStorage) LoadJSON(key string, value any) error {
	ctx, cancel := s.ctx()
	defer cancel()

	var doc mongoDoc
	if err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(doc.Value), value); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *MongoStorage) Exists(key string) bool {
	ctx, cancel := s.ctx()
	defer cancel()
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": key})
	return err == nil && n > 0
}

func (s *MongoStorage) Remove(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("remove %s: not found", key)
	}
	return nil
}

func (s *MongoStorage) ListKeys(prefix string) ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	filter := bson.M{}
	if prefix != "" {
		filter["_id"] = bson.M{"$regex": "^" + escapeRegex(prefix)}
	}
	cursor, err := s.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	return keys, cursor.Err()
}

func (s *MongoStorage) Close() error {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Disconnect(ctx)
}

func escapeRegex(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`, `.`, `\.`, `+`, `\+`, `*`, `\*`, `?`, `\?`,
		`(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
		`^`, `\^`, `$`, `\$`, `|`, `\|`)
	return replacer.Replace(s)
}
