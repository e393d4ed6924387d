package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/pkg/circuit_breaker"
)

//go:generate go run github.com/golang/mock/mockgen -source=client.go -destination=mocks/mock.go -package=mocks

type Config struct {
	Host string `envconfig:"BILLING_HTTP_HOST" default:"localhost"`
	Port string `envconfig:"BILLING_HTTP_PORT" default:"8090"`
}

// Invoice is generated once per confirmed reservation and is never
// re-derived from mutable state afterwards.
type Invoice struct {
	ReservationUid string          `json:"reservationUid"`
	GuestUid       string          `json:"guestUid"`
	Total          decimal.Decimal `json:"total"`
	Taxes          decimal.Decimal `json:"taxes"`
	ServiceFee     decimal.Decimal `json:"serviceFee"`
	IssuedAt       time.Time       `json:"issuedAt"`
}

type Client interface {
	IssueInvoice(ctx context.Context, inv Invoice) error
}

type client struct {
	log    *zap.Logger
	client *http.Client
	cfg    Config
	cb     circuit_breaker.CircuitBreaker
}

func NewClient(cfg Config, log *zap.Logger) *client {
	return &client{
		log:    log.Named("billing"),
		client: &http.Client{Timeout: time.Minute},
		cfg:    cfg,
		cb:     circuit_breaker.New(20, time.Second*30, 0.5, 5),
	}
}

func (c *client) IssueInvoice(ctx context.Context, inv Invoice) error {
	return c.cb.Call(func() error {
		b := bytes.NewBuffer(nil)
		if err := json.NewEncoder(b).Encode(inv); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("http://%s/api/v1/invoices", net.JoinHostPort(c.cfg.Host, c.cfg.Port)), b)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", echo.MIMEApplicationJSONCharsetUTF8)
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusMultipleChoices {
			return errors.Errorf("billing responded %d", resp.StatusCode)
		}
		return nil
	})
}
