package mailer

import (
	"crypto/tls"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"os"
	"strings"

	"arxiv-daily/archive"
	"arxiv-daily/config"
)

// Mailer delivers the daily report over SMTP with implicit TLS.
// Credentials come from env; when anything is missing the mailer is
// disabled and Send* calls are no-ops.
type Mailer struct {
	enabled   bool
	server    string
	port      string
	sender    string
	password  string
	receivers []string
}

func NewFromEnv(cfg config.MailConfig) *Mailer {
	m := &Mailer{
		server:   os.Getenv("SMTP_SERVER"),
		port:     os.Getenv("SMTP_PORT"),
		sender:   os.Getenv("SENDER_EMAIL"),
		password: os.Getenv("SENDER_PASSWORD"),
	}
	if m.port == "" {
		m.port = "465"
	}
	for _, r := range strings.Split(os.Getenv("RECEIVER_EMAIL"), ",") {
		if r = strings.TrimSpace(r); r != "" {
			m.receivers = append(m.receivers, r)
		}
	}

	m.enabled = cfg.Enabled && m.server != "" && m.sender != "" && m.password != "" && len(m.receivers) > 0
	if cfg.Enabled && !m.enabled {
		config.Logger.Warn("mail config incomplete, mail delivery disabled")
	}
	return m
}

func (m *Mailer) Enabled() bool { return m.enabled }

// SendDailyReport mails the day's summaries to all receivers.
func (m *Mailer) SendDailyReport(day *archive.Day) error {
	if !m.enabled {
		return nil
	}
	subject := fmt.Sprintf("Arxiv LLM Daily %s - %d paper(s)", day.Date, len(day.Entries))
	return m.send(subject, reportHTML(day))
}

// SendNoPapersNotice mails a short note that the run found nothing new.
func (m *Mailer) SendNoPapersNotice(date string) error {
	if !m.enabled {
		return nil
	}
	subject := fmt.Sprintf("Arxiv LLM Daily %s - no new papers", date)
	body := fmt.Sprintf("<html><body style='font-family: Arial, sans-serif;'><p>No new papers matched the filters on %s.</p></body></html>", date)
	return m.send(subject, body)
}

func reportHTML(day *archive.Day) string {
	var b strings.Builder
	b.WriteString("<html><body style='font-family: Arial, sans-serif;'>")
	fmt.Fprintf(&b, "<h1>Arxiv LLM Daily - %s</h1>", day.Date)
	if day.TrendOverview != "" {
		fmt.Fprintf(&b, "<p><b>Trend overview:</b> %s</p>", html.EscapeString(day.TrendOverview))
	}
	for i, e := range day.Entries {
		fmt.Fprintf(&b, "<h2>%d. <a href=%q>%s</a></h2>", i+1, e.Paper.EntryURL, html.EscapeString(e.Paper.Title))
		fmt.Fprintf(&b, "<p><b>Decision:</b> %s</p>", e.AI.Decision)
		if e.AI.Summary != "" {
			fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(e.AI.Summary))
		}
		b.WriteString("<hr>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func (m *Mailer) send(subject, htmlBody string) error {
	addr := net.JoinHostPort(m.server, m.port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.server})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, m.server)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.sender, m.password, m.server)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.sender); err != nil {
		return err
	}
	for _, rcpt := range m.receivers {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + m.sender,
		"To: " + strings.Join(m.receivers, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		htmlBody,
	}, "\r\n")

	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
