package services

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"sync"

	"travelblog/internal/config"
	"travelblog/internal/logger"
	"travelblog/internal/observability"

	"go.uber.org/zap"
)

type EmailService struct {
	auth smtp.Auth
	from string
	host string
	port string
}

// NewEmailService возвращает nil, если SMTP не настроен: письма тогда только логируются.
func NewEmailService(cfg *config.Config) *EmailService {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" {
		return nil
	}
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &EmailService{
		auth: auth,
		from: cfg.SMTPUser,
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
	}
}

func (s *EmailService) SendHTML(to []string, subject, body string) error {
	msg := buildMessage(s.from, to, subject, "text/html", body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, to, msg)
}

func buildMessage(from string, to []string, subject, contentType, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// Mailer — то, чем очередь отправляет письма.
type Mailer interface {
	SendHTML(to []string, subject, body string) error
}

type EmailJob struct {
	To      []string
	Subject string
	Body    string
}

// EmailQueue — буферизованная очередь писем, которую разбирают несколько воркеров.
type EmailQueue struct {
	mailer Mailer
	jobs   chan EmailJob
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewEmailQueue(mailer Mailer, size int) *EmailQueue {
	if size <= 0 {
		size = 100
	}
	return &EmailQueue{mailer: mailer, jobs: make(chan EmailJob, size)}
}

func (q *EmailQueue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

func (q *EmailQueue) worker(n int) {
	defer q.wg.Done()
	for job := range q.jobs {
		if err := q.mailer.SendHTML(job.To, job.Subject, job.Body); err != nil {
			observability.EmailsSent.WithLabelValues("failed").Inc()
			logger.Log.Error("Не удалось отправить письмо", zap.Int("worker", n), zap.Strings("to", job.To), zap.Error(err))
			continue
		}
		observability.EmailsSent.WithLabelValues("sent").Inc()
		logger.Log.Info("Письмо отправлено", zap.Int("worker", n), zap.Strings("to", job.To), zap.String("subject", job.Subject))
	}
}

// Enqueue не блокирует: при переполненной очереди, закрытой очереди или без SMTP письмо отбрасывается.
func (q *EmailQueue) Enqueue(job EmailJob) bool {
	if q == nil {
		return false
	}
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || q.mailer == nil {
		observability.EmailsSent.WithLabelValues("dropped").Inc()
		logger.Log.Warn("SMTP не настроен, письмо не отправлено", zap.Strings("to", job.To), zap.String("subject", job.Subject))
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		observability.EmailsSent.WithLabelValues("dropped").Inc()
		logger.Log.Warn("Очередь писем переполнена", zap.Strings("to", job.To))
		return false
	}
}

// Close прекращает приём писем и ждёт, пока воркеры разберут очередь.
func (q *EmailQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}
