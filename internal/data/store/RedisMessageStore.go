package store

import (
	"context"
	"errors"

	"github.com/qafarov/agribot/internal/adapter/utils"
	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/data/redisStore"
	"github.com/qafarov/agribot/internal/domain/jobModel"
	"github.com/qafarov/agribot/pkg/logger_i"
)

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if backing == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  backing,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}

// FormatExchange renders one stored question/answer pair the way it is
// later spliced into the model prompt.
func FormatExchange(payload jobModel.JobPayload) string {
	if payload.Question == "" && payload.Answer == "" {
		return ""
	}
	return "SUAL: " + payload.Question + "\nCAVAB: " + payload.Answer
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("validating chatId")
	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) TrySaveChat(ctx context.Context, id string, conversation jobModel.JobPayload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	if s.ValidateChatId(ctx, id) == false {
		err := errors.New("invalid chat id")
		log.Error("Failed Validation before saving", "err", err)
		return err
	}
	return s.saveChatId(ctx, id, FormatExchange(conversation))
}

func (s *RedisMessageStore) saveChatId(ctx context.Context, id string, exchange string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	err := s.store.ListPush(ctx, id, exchange)
	if err != nil {
		log.Error("error saving chat", "error:", err)
	}
	log.Debug("Saved chat successfully")
	return err
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Initializing new chat")
	err := s.store.Del(ctx, id)
	if s.store.IsNil(err) {
		log.Error("Error initializing chat", "chat Id", id)
	}
	return s.saveChatId(ctx, id, "")
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) (error, []string) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Getting message history")

	res, err := s.store.ListGet5PastMessage(ctx, chatId)

	if err != nil {
		log.Error("Error getting history", "error:", err)
		return err, nil
	}
	return nil, utils.DropEmptyStrings(res)
}
