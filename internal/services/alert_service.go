package services

import (
	"context"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// AlertService pushes operational warnings to a human. Failures are logged, never returned.
type AlertService interface {
	Notify(ctx context.Context, text string)
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type telegramAlertService struct {
	bot    telegramSender
	chatID int64
	log    *zap.Logger
}

// NewTelegramAlertService returns a no-op service when the token or chat id is missing.
func NewTelegramAlertService(botToken string, chatID int64, log *zap.Logger) (AlertService, error) {
	if botToken == "" || chatID == 0 {
		log.Info("[tg][skip] bot token or chat id empty, alerts disabled")
		return NopAlertService{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return newTelegramAlertService(bot, chatID, log), nil
}

func newTelegramAlertService(bot telegramSender, chatID int64, log *zap.Logger) *telegramAlertService {
	return &telegramAlertService{bot: bot, chatID: chatID, log: log.Named("alerts")}
}

func (s *telegramAlertService) Notify(ctx context.Context, text string) {
	if ctx.Err() != nil {
		s.log.Warn("[tg][skip] context done", zap.Error(ctx.Err()))
		return
	}
	msg := tgbotapi.NewMessage(s.chatID, "<b>artemis</b>\n"+html.EscapeString(text))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := s.bot.Send(msg); err != nil {
		s.log.Error("[tg][send] failed", zap.Int64("chat_id", s.chatID), zap.Error(err))
	}
}

type NopAlertService struct{}

func (NopAlertService) Notify(context.Context, string) {}
