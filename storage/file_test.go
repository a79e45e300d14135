package storage_test

import (
	"slices"
	"testing"

	"github.com/kevin-chtw/tw_replay/storage"
)

func TestFileStorageRoundTrip(t *testing.T) {
	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	type doc struct {
		Name string `json:"name"`
		Elo  int    `json:"elo"`
	}

	if store.Exists("player/abc") {
		t.Error("key should not exist yet")
	}
	if err := store.SaveJSON("player/abc", doc{Name: "甲", Elo: 1502}); err != nil {
		t.Fatal(err)
	}
	if !store.Exists("player/abc") {
		t.Error("key should exist after save")
	}

	var got doc
	if err := store.LoadJSON("player/abc", &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "甲" || got.Elo != 1502 {
		t.Errorf("loaded = %+v", got)
	}
}

func TestFileStorageListKeys(t *testing.T) {
	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"record/r1", "record/r2", "player/p1", "sessions/all_record"} {
		if err := store.SaveJSON(key, map[string]int{"v": 1}); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.ListKeys(storage.KeyRecord)
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(keys)
	if !slices.Equal(keys, []string{"record/r1", "record/r2"}) {
		t.Errorf("keys = %v", keys)
	}

	all, err := store.ListKeys("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("all keys = %v", all)
	}
}

func TestFileStorageRemove(t *testing.T) {
	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.SaveJSON("record/x", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove("record/x"); err != nil {
		t.Fatal(err)
	}
	if store.Exists("record/x") {
		t.Error("key still exists after remove")
	}
	if err := store.Remove("record/x"); err == nil {
		t.Error("removing missing key should fail")
	}
}

func TestFileStorageLoadMissing(t *testing.T) {
	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var v int
	if err := store.LoadJSON("nope", &v); err == nil {
		t.Error("loading missing key should fail")
	}
}
