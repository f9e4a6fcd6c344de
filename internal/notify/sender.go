// Package notify は新規登録などのお知らせを送る。送信失敗は呼び出し側で握りつぶしてよい。
package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"shoecatalog/internal/config"
	"shoecatalog/pkg/logger"
)

// Sender はsubject/bodyを1件送る
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// LogSender は送信せずにログへ出すだけ（mail無効時）
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.Named("notify")}
}

func (s *LogSender) Send(ctx context.Context, subject, body string) error {
	s.log.WithContext(ctx).Info("notification", "subject", subject, "body", body)
	return nil
}

const defaultTimeout = 10 * time.Second

// SMTPSender はSMTPでメールを1通送る
type SMTPSender struct {
	addr    string
	host    string
	from    string
	to      []string
	timeout time.Duration
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SMTPSender{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:    cfg.Host,
		from:    cfg.From,
		to:      splitAddresses(cfg.To),
		timeout: timeout,
	}
}

// 接続・応答待ちはすべてtimeoutかctxの期限の早い方で打ち切る
func (s *SMTPSender) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.addr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	//キャンセルされたら接続を閉じて読み書きを止める
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := s.deliver(conn, s.message(subject, body)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("send mail to %s: %w", s.addr, ctxErr)
		}
		return fmt.Errorf("send mail to %s: %w", s.addr, err)
	}
	return nil
}

func (s *SMTPSender) deliver(conn net.Conn, msg []byte) error {
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(s.from); err != nil {
		return err
	}
	for _, to := range s.to {
		if err := c.Rcpt(to); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *SMTPSender) message(subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from + "\r\n")
	b.WriteString("To: " + strings.Join(s.to, ", ") + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}

func splitAddresses(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// New は設定に応じたSenderを返す
func New(cfg config.MailConfig, log *logger.Logger) Sender {
	if cfg.Enabled {
		return NewSMTPSender(cfg)
	}
	return NewLogSender(log)
}
