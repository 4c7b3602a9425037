package telegram

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message - входящее сообщение чата, приведенное к внутреннему виду
type Message struct {
	ChatID    int64
	Text      string
	Username  string
	FirstName string
	LastName  string
	Language  string
}

// Callback - нажатие на инлайн-кнопку
type Callback struct {
	ID        string
	UserID    int64
	Username  string
	FirstName string
	MessageID string
	Data      string
}

// Client оборачивает Telegram Bot API
type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient создает клиент Telegram по токену бота
func NewClient(token string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram client: %w", err)
	}

	return &Client{bot: bot}, nil
}

func (t *Client) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := t.bot.Send(msg)
	return err
}

func (t *Client) SendMarkdownMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	_, err := t.bot.Send(msg)
	return err
}

func (t *Client) SendMessageWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := t.bot.Send(msg)
	return err
}

// Start запускает long polling и раздает обновления по двум каналам:
// обычные сообщения и callback-запросы
func (t *Client) Start() (chan Message, chan Callback, error) {
	// Удаляем вебхук перед запуском Long Polling
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to delete webhook: %v", err)
	}

	// Пауза для стабилизации соединения
	time.Sleep(1 * time.Second)

	messages := make(chan Message)
	callbacks := make(chan Callback)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for update := range updates {
			if update.Message != nil {
				from := update.Message.From
				messages <- Message{
					ChatID:    update.Message.Chat.ID,
					Text:      update.Message.Text,
					Username:  from.UserName,
					FirstName: from.FirstName,
					LastName:  from.LastName,
					Language:  from.LanguageCode,
				}
			}

			if update.CallbackQuery != nil {
				callbacks <- newCallback(update.CallbackQuery)

				// Снимаем индикатор загрузки с кнопки
				callbackCfg := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
				t.bot.Send(callbackCfg)
			}
		}
	}()

	return messages, callbacks, nil
}

// newCallback приводит callback-запрос к внутреннему виду.
// Для кнопок на сообщениях старше 48 часов Telegram присылает
// запрос без Message - тогда MessageID остается пустым.
func newCallback(q *tgbotapi.CallbackQuery) Callback {
	cb := Callback{
		ID:        q.ID,
		UserID:    q.From.ID,
		Username:  q.From.UserName,
		FirstName: q.From.FirstName,
		Data:      q.Data,
	}
	if q.Message != nil {
		cb.MessageID = strconv.Itoa(q.Message.MessageID)
	}
	return cb
}
