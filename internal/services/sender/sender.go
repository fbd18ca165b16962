// Package sender реализует отправку почтовых уведомлений
// по сообщениям из брокера: действия модерации и тикеты поддержки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

// SenderService отправляет письма через SMTP транспорт.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

var moderationSubjects = map[string]string{
	"warn_user":    "Предупреждение от модерации Rave Tracker",
	"suspend_user": "Ваш аккаунт Rave Tracker временно заблокирован",
	"ban_user":     "Ваш аккаунт Rave Tracker заблокирован",
}

// SendModerationNotice отправляет пользователю письмо о действии модерации.
func (s *SenderService) SendModerationNotice(body []byte) error {
	var message models.ModerationNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject, ok := moderationSubjects[message.Action]
	if !ok {
		subject = "Уведомление от модерации Rave Tracker"
	}
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nМодерация Rave Tracker приняла меры по вашему аккаунту: %s.\nПричина: %s.\n\nЕсли вы считаете решение ошибочным, обратитесь в поддержку.",
		message.Username, message.Action, message.Reason)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

// SendTicketNotice отправляет автору тикета подтверждение о его создании.
func (s *SenderService) SendTicketNotice(body []byte) error {
	var message models.TicketNotice
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Обращение %s принято в работу", message.TicketNumber)
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаше обращение \"%s\" (категория: %s) зарегистрировано под номером %s.\nМы ответим вам в ближайшее время.",
		message.Username, message.Subject, message.Category, message.TicketNumber)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("failed to close SMTP client", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
