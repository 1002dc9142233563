package gateway

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/errs"
	"github.com/pkg/errors"
)

type apiResp struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

// Telegram talks to the Bot API over HTTP.
type Telegram struct {
	client *resty.Client
	token  string
}

func NewTelegram(cfg conf.Telegram) *Telegram {
	client := resty.New().
		SetBaseURL(cfg.APIBase).
		SetTimeout(cfg.Timeout)
	return &Telegram{client: client, token: cfg.Token}
}

func (t *Telegram) call(method string, body map[string]any) error {
	var result apiResp
	resp, err := t.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post(fmt.Sprintf("/bot%s/%s", t.token, method))
	if err != nil {
		return errors.Wrapf(errs.ErrDelivery, "telegram %s: %v", method, err)
	}
	if resp.IsError() || !result.Ok {
		return errors.Wrapf(errs.ErrDelivery, "telegram %s: %s", method, result.Description)
	}
	return nil
}

func (t *Telegram) SendText(chatID, text string) error {
	return t.call("sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
}

func (t *Telegram) SendPhoto(chatID, photoRef, caption string) error {
	return t.call("sendPhoto", map[string]any{
		"chat_id":    chatID,
		"photo":      photoRef,
		"caption":    caption,
		"parse_mode": "HTML",
	})
}
