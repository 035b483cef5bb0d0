package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramService pings the admin channel when a submission needs review.
// A nil service (no token configured) is safe to call.
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramService(botToken string, adminChatID int64) *TelegramService {
	if botToken == "" || adminChatID == 0 {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init][err] %v", err)
		return nil
	}
	return &TelegramService{bot: bot, chatID: adminChatID}
}

func (t *TelegramService) NotifyNewSubmission(userEmail, taskTitle string, submissionID int64) {
	if t == nil || t.bot == nil {
		return
	}
	text := fmt.Sprintf("📥 New submission #%d\nTask: %s\nFrom: %s", submissionID, taskTitle, userEmail)
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] submission=%d: %v", submissionID, err)
	}
}
