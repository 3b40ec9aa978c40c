// Package paygate talks to the external payment gateway over HTTP.
package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	cb "github.com/Astemirdum/library-circulation/pkg/circuit_breaker"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	cbRecordLength     = 20
	cbTimeout          = 10 * time.Second
	cbPercentile       = 0.5
	cbRecoveryRequests = 3

	maxErrorBody = 4 << 10
)

var ErrUnavailable = errors.New("payment gateway unavailable")

type Service struct {
	log     *zap.Logger
	client  *http.Client
	cfg     config.PaymentHTTPServer
	breaker cb.CircuitBreaker
	baseURL string
}

func NewService(log *zap.Logger, cfg *config.Config) *Service {
	return &Service{
		log: log.Named("paygate"),
		client: &http.Client{
			Timeout: cfg.PaymentHTTPServer.Timeout,
		},
		cfg:     cfg.PaymentHTTPServer,
		breaker: cb.New(cbRecordLength, cbTimeout, cbPercentile, cbRecoveryRequests),
		baseURL: fmt.Sprintf("http://%s/api/v1", net.JoinHostPort(cfg.PaymentHTTPServer.Host, cfg.PaymentHTTPServer.Port)),
	}
}

type paymentRequest struct {
	PatronID    string          `json:"patronId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type refundRequest struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
}

func (s *Service) ProcessPayment(ctx context.Context, patronID string, amount decimal.Decimal, description string) (model.GatewayResponse, error) {
	return s.post(ctx, "/payments", paymentRequest{
		PatronID:    patronID,
		Amount:      amount,
		Description: description,
	})
}

func (s *Service) RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal) (model.GatewayResponse, error) {
	return s.post(ctx, "/refunds", refundRequest{
		TransactionID: transactionID,
		Amount:        amount,
	})
}

// post sends body to the gateway. Any 4xx answer is a declined outcome and
// never trips the circuit breaker; transport failures, 5xx and undecodable
// 2xx bodies count against it.
func (s *Service) post(ctx context.Context, path string, body any) (model.GatewayResponse, error) {
	b := bytes.NewBuffer(nil)
	if err := json.NewEncoder(b).Encode(body); err != nil {
		return model.GatewayResponse{}, err
	}

	var resp model.GatewayResponse
	err := s.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(b.Bytes()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-Id", uuid.NewString())

		httpResp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer httpResp.Body.Close()

		if httpResp.StatusCode >= http.StatusInternalServerError {
			msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512)) //nolint:errcheck
			return errors.Wrapf(ErrUnavailable, "%s: status %d: %s", path, httpResp.StatusCode, bytes.TrimSpace(msg))
		}
		if httpResp.StatusCode >= http.StatusBadRequest {
			resp = declined(httpResp)
			return nil
		}
		if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
			return errors.Wrapf(err, "%s: decode status %d", path, httpResp.StatusCode)
		}
		return nil
	})
	if err != nil {
		s.log.Error("gateway call", zap.String("path", path), zap.Error(err))
		return model.GatewayResponse{}, err
	}
	return resp, nil
}

// declined reads a 4xx answer. Bodies that are not a gateway response, such as
// a proxy error page, get a generic message.
func declined(httpResp *http.Response) model.GatewayResponse {
	var resp model.GatewayResponse
	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
	if err != nil || json.Unmarshal(raw, &resp) != nil || resp.Message == "" {
		resp.Message = fmt.Sprintf("Payment gateway rejected the request (status %d).", httpResp.StatusCode)
	}
	resp.Success = false
	return resp
}
