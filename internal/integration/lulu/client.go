// Package lulu отправляет задания печати в Lulu print-on-demand API.
package lulu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// ProviderName имя провайдера в ошибках и логах
const ProviderName = "lulu"

const (
	tokenPath     = "/auth/realms/glasstree/protocol/openid-connect/token"
	printJobsPath = "/print-jobs/"

	// ShippingLevelMail самый дешевый уровень доставки
	ShippingLevelMail = "MAIL"

	// ProductionDelayMinutes окно для отмены задания после создания
	ProductionDelayMinutes = 120

	maxErrorBody = 4096
)

// Config конфигурация клиента Lulu
type Config struct {
	APIURL       string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client клиент Lulu API.
// Токен запрашивается заново перед каждым заданием, состояние между вызовами не хранится.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient создает новый клиент Lulu
func NewClient(cfg Config, log *logger.Logger) *Client {
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// Name возвращает имя провайдера
func (c *Client) Name() string {
	return ProviderName
}

// accessToken обменивает учетные данные на токен.
// Неудачный обмен повторяется не более одного раза; ошибки 4xx не повторяются.
func (c *Client) accessToken(ctx context.Context, orderID string) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.APIURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	var token *oauth2.Token
	operation := func() error {
		t, err := cc.Token(tokenCtx)
		if err != nil {
			var re *oauth2.RetrieveError
			if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
				return backoff.Permanent(err)
			}
			c.log.Warnw("Lulu token exchange failed", "orderID", orderID, "error", err)
			return err
		}
		token = t
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, 1), ctx)); err != nil {
		return "", &domain.AuthenticationError{Provider: ProviderName, OrderID: orderID, OriginalErr: err}
	}
	if token.AccessToken == "" {
		return "", &domain.AuthenticationError{Provider: ProviderName, OrderID: orderID, OriginalErr: errors.New("empty access token")}
	}
	return token.AccessToken, nil
}

// CreatePrintJob получает токен и отправляет одно задание печати.
// Отправка выполняется с таймаутом и не повторяется.
func (c *Client) CreatePrintJob(ctx context.Context, job PrintJobRequest) (PrintJob, error) {
	orderID := job.ExternalID

	token, err := c.accessToken(ctx, orderID)
	if err != nil {
		return PrintJob{}, err
	}

	body, err := json.Marshal(job)
	if err != nil {
		return PrintJob{}, fmt.Errorf("lulu: failed to encode print job: %w", err)
	}

	submitCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(submitCtx, http.MethodPost, c.cfg.APIURL+printJobsPath, bytes.NewReader(body))
	if err != nil {
		return PrintJob{}, fmt.Errorf("lulu: failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return PrintJob{}, &domain.FulfillmentError{Provider: ProviderName, OrderID: orderID, OriginalErr: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return PrintJob{}, &domain.FulfillmentError{
			Provider:   ProviderName,
			OrderID:    orderID,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	// задание уже принято Lulu: нечитаемый ответ не считается отказом
	var printJob PrintJob
	if err := json.NewDecoder(resp.Body).Decode(&printJob); err != nil {
		c.log.Warnw("Lulu accepted print job but response could not be decoded", "orderID", orderID, "status", resp.StatusCode, "error", err)
		return PrintJob{}, nil
	}

	c.log.Infow("Lulu print job created", "orderID", orderID, "printJobID", printJob.ID, "status", printJob.Status.Name)
	return printJob, nil
}
