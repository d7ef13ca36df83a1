// Package notify sends the side effects of signup and submission to
// external services: transactional mail, a spreadsheet log, and a chat
// webhook. Every channel is best-effort; a failed call is logged and
// dropped, and the triggering operation always completes.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"fpndb/internal/config"
	"fpndb/internal/model"
)

type Mailer interface {
	SendVerificationCode(ctx context.Context, email, name, code string) error
}

type SheetLogger interface {
	AppendRecord(ctx context.Context, rec model.Record) error
}

type ChatNotifier interface {
	NotifySubmission(ctx context.Context, rec model.Record) error
}

// Gateway fans business events out to whichever channels are
// configured. A nil channel is disabled and substitutes a local log
// line.
type Gateway struct {
	log    zerolog.Logger
	mailer Mailer
	sheets SheetLogger
	chat   ChatNotifier
}

func New(l zerolog.Logger, cfg config.Config) *Gateway {
	var mailer Mailer
	if cfg.MailAPIKey != "" && cfg.MailSecretKey != "" {
		mailer = NewMailjetMailer(cfg.MailAPIKey, cfg.MailSecretKey)
	}

	var sheets SheetLogger
	if cfg.SheetAPIURL != "" && cfg.SheetToken != "" {
		sheets = NewSheetyLogger(cfg.SheetAPIURL, cfg.SheetToken)
	}

	var chat ChatNotifier
	if cfg.ChatWebhookURL != "" {
		chat = NewSlackNotifier(cfg.ChatWebhookURL, cfg.BaseURL)
	}

	return NewWithChannels(l, mailer, sheets, chat)
}

// NewWithChannels builds a gateway from explicit channel
// implementations; nil disables a channel.
func NewWithChannels(l zerolog.Logger, mailer Mailer, sheets SheetLogger, chat ChatNotifier) *Gateway {
	return &Gateway{
		log:    l.With().Str("module", "notify").Logger(),
		mailer: mailer,
		sheets: sheets,
		chat:   chat,
	}
}

// VerificationRequested dispatches the one-time code over the mail
// channel. With the channel disabled the code is logged instead so a
// local deployment stays usable.
func (g *Gateway) VerificationRequested(ctx context.Context, email, name, code string) {
	if g.mailer == nil {
		g.log.Info().Str("email", email).Str("code", code).Msg("mail channel disabled; verification code logged")
		return
	}
	if err := g.mailer.SendVerificationCode(ctx, email, name, code); err != nil {
		g.log.Warn().Err(err).Str("email", email).Msg("verification email failed")
	}
}

// RecordSubmitted logs the record to the spreadsheet channel and pings
// the chat channel for approval.
func (g *Gateway) RecordSubmitted(ctx context.Context, rec model.Record) {
	if g.sheets == nil {
		g.log.Info().Str("record_id", rec.ID).Msg("sheet channel disabled; skipping append")
	} else if err := g.sheets.AppendRecord(ctx, rec); err != nil {
		g.log.Warn().Err(err).Str("record_id", rec.ID).Msg("sheet append failed")
	}

	if g.chat == nil {
		g.log.Info().Str("record_id", rec.ID).Msg("chat channel disabled; skipping approval notice")
	} else if err := g.chat.NotifySubmission(ctx, rec); err != nil {
		g.log.Warn().Err(err).Str("record_id", rec.ID).Msg("chat notification failed")
	}
}
