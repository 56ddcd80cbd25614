package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/data/redisStore"
	"github.com/qafarov/agribot/internal/data/store"
	"github.com/qafarov/agribot/internal/domain/jobModel"
	"github.com/redis/go-redis/v9"
)

func newMessageStore(t *testing.T) (*miniredis.Miniredis, *store.RedisMessageStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, store.TestMessageStore(redisStore.NewTestStore(client))
}

func TestRedisMessageStore_ChatLifecycle(t *testing.T) {
	_, messageStore := newMessageStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	chatID := "chat_42"

	t.Run("Save Without Init Fails", func(t *testing.T) {
		err := messageStore.TrySaveChat(ctx, chatID, jobModel.JobPayload{Question: "q", Answer: "a"})
		if err == nil {
			t.Error("Expected an error for an unknown chat id")
		}
	})

	t.Run("Init Then Save And Read Back", func(t *testing.T) {
		if err := messageStore.InitNewChat(ctx, chatID); err != nil {
			t.Fatalf("InitNewChat failed: %v", err)
		}

		payload := jobModel.JobPayload{
			Question: "Buğdada pas xəstəliyi necə müalicə olunur?",
			Answer:   "Fungisidlərlə çiləmə aparılır.",
		}
		if err := messageStore.TrySaveChat(ctx, chatID, payload); err != nil {
			t.Fatalf("TrySaveChat failed: %v", err)
		}

		err, history := messageStore.GetMessageHistory(ctx, chatID)
		if err != nil {
			t.Fatalf("GetMessageHistory failed: %v", err)
		}
		// the init placeholder is dropped, only the real exchange survives
		if len(history) != 1 {
			t.Fatalf("Expected 1 history entry, got %d", len(history))
		}
		if history[0] != store.FormatExchange(payload) {
			t.Errorf("History mismatch! Got %q, want %q", history[0], store.FormatExchange(payload))
		}
	})
}

func TestRedisMessageStore_HistoryKeepsLastFive(t *testing.T) {
	_, messageStore := newMessageStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	chatID := "chat_long"

	if err := messageStore.InitNewChat(ctx, chatID); err != nil {
		t.Fatalf("InitNewChat failed: %v", err)
	}
	for i := 1; i <= 8; i++ {
		payload := jobModel.JobPayload{
			Question: fmt.Sprintf("sual %d", i),
			Answer:   fmt.Sprintf("cavab %d", i),
		}
		if err := messageStore.TrySaveChat(ctx, chatID, payload); err != nil {
			t.Fatalf("TrySaveChat %d failed: %v", i, err)
		}
	}

	err, history := messageStore.GetMessageHistory(ctx, chatID)
	if err != nil {
		t.Fatalf("GetMessageHistory failed: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("Expected 5 history entries, got %d", len(history))
	}
	// oldest of the window first, newest last
	if history[0] != "SUAL: sual 4\nCAVAB: cavab 4" {
		t.Errorf("Unexpected oldest entry: %q", history[0])
	}
	if history[4] != "SUAL: sual 8\nCAVAB: cavab 8" {
		t.Errorf("Unexpected newest entry: %q", history[4])
	}
}

func TestFormatExchange_EmptyPayload(t *testing.T) {
	if got := store.FormatExchange(jobModel.JobPayload{}); got != "" {
		t.Errorf("Expected empty string for empty payload, got %q", got)
	}
}
