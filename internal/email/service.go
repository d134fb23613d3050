package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/shop-assistant/internal/events"
)

// Service sends order emails via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{host: host, port: port, from: from}
}

// SendOrderConfirmation sends the confirmation mail for an order.
func (s *Service) SendOrderConfirmation(to string, order events.OrderConfirmed) error {
	shortID := order.OrderID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	subject := fmt.Sprintf("Confirmación de pedido %s", shortID)
	body := BuildOrderConfirmationBody(order)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
