package relay

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/internal/inbound"
)

// TelegramSender delivers outbound texts; wa numbers map 1:1 to Telegram
// chat IDs.
type TelegramSender struct {
	bot *bot.Bot
}

func NewTelegramSender(b *bot.Bot) *TelegramSender {
	return &TelegramSender{bot: b}
}

func (s *TelegramSender) SendText(ctx context.Context, waNumber, text string) error {
	chatID, err := strconv.ParseInt(waNumber, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", waNumber, err)
	}
	_, err = s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// Bridge forwards incoming Telegram updates to the API and relays the reply.
type Bridge struct {
	api  *APIClient
	http *http.Client
	log  zerolog.Logger
}

func NewBridge(api *APIClient, log zerolog.Logger) *Bridge {
	return &Bridge{
		api:  api,
		http: &http.Client{Timeout: 60 * time.Second},
		log:  log,
	}
}

// HandleUpdate is registered as the bot's message handler.
func (br *Bridge) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	waNumber := strconv.FormatInt(msg.Chat.ID, 10)

	payload := inbound.Payload{
		WaNumber:    waNumber,
		MessageType: "TEXT",
		Text:        msg.Text,
		SentAt:      time.Unix(int64(msg.Date), 0).UTC().Format(time.RFC3339),
	}

	if len(msg.Photo) > 0 {
		imageBase64, err := br.downloadLargestPhoto(ctx, b, msg.Photo)
		if err != nil {
			br.log.Error().Err(err).Str("wa_number", waNumber).Msg("failed to download photo")
			return
		}
		payload.MessageType = "IMAGE"
		payload.Text = ""
		payload.Caption = msg.Caption
		payload.ImageBase64 = imageBase64
	}

	reply, err := br.api.Forward(ctx, payload)
	if err != nil {
		br.log.Error().Err(err).Str("wa_number", waNumber).Msg("failed to forward inbound message")
		return
	}
	if reply.ReplyText == "" && reply.ImageBase64 == "" {
		return
	}

	if reply.ImageBase64 != "" {
		image, err := base64.StdEncoding.DecodeString(reply.ImageBase64)
		if err == nil {
			_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
				ChatID:  msg.Chat.ID,
				Photo:   &models.InputFileUpload{Filename: "report.png", Data: bytes.NewReader(image)},
				Caption: reply.ReplyText,
			})
			if err != nil {
				br.log.Error().Err(err).Str("wa_number", waNumber).Msg("failed to send reply photo")
			}
			return
		}
		br.log.Error().Err(err).Msg("reply image is not valid base64, sending text only")
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: reply.ReplyText}); err != nil {
		br.log.Error().Err(err).Str("wa_number", waNumber).Msg("failed to send reply")
	}
}

func (br *Bridge) downloadLargestPhoto(ctx context.Context, b *bot.Bot, sizes []models.PhotoSize) (string, error) {
	largest := sizes[len(sizes)-1]
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: largest.FileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return "", err
	}
	resp, err := br.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("file download returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
