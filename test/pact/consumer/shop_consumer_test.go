//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-shop-server/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type productPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Stock     int    `json:"stock"`
	Available bool   `json:"available"`
}

type checkoutPayload struct {
	Order struct {
		ID          int64  `json:"id"`
		TotalAmount string `json:"totalAmount"`
	} `json:"order"`
	Balance  string `json:"balance"`
	Replayed bool   `json:"replayed"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status      int
	problemType string
	title       string
	detail      string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func TestShopWebContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	example := pacttest.ExampleProductPayload()
	productMatcher := matchers.Map{
		"id":        matchers.Like(example["id"]),
		"name":      matchers.Like(example["name"]),
		"price":     matchers.Term(example["price"].(string), `^\d+\.\d{2}$`),
		"stock":     matchers.Like(example["stock"]),
		"available": matchers.Like(example["available"]),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.S("application/problem+json")

	pact.AddInteraction().
		Given(pacttest.StateCatalogue).
		UponReceiving("a request for a catalogue product").
		WithRequest("GET", fmt.Sprintf("/v1/products/%d", pacttest.DeskLampID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(productMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateProductMissing).
		UponReceiving("a request for a missing product").
		WithRequest("GET", fmt.Sprintf("/v1/products/%d", pacttest.MissingProductID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateReadyToCheckout).
		UponReceiving("a checkout of a funded cart").
		WithRequest("POST", "/v1/checkout", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-User-ID", matchers.S(pacttest.FundedUser))
			b.Header("Idempotency-Key", matchers.S(pacttest.CheckoutKey))
			b.JSONBody(matchers.Map{"delivery": matchers.S("pick-up")})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"order": matchers.Map{
					"id":          matchers.Like(1),
					"userId":      matchers.S(pacttest.FundedUser),
					"totalAmount": matchers.S("30.00"),
					"status": matchers.Map{
						"id":   matchers.Like(1),
						"name": matchers.Like("Processing"),
					},
					"items": matchers.EachLike(matchers.Map{
						"productId": matchers.Like(pacttest.DeskLampID),
						"quantity":  matchers.Like(1),
						"unitPrice": matchers.S("30.00"),
					}, 1),
				},
				"balance":  matchers.S("70.00"),
				"replayed": matchers.Like(false),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateShortOfFunds).
		UponReceiving("a checkout the wallet cannot cover").
		WithRequest("POST", "/v1/checkout", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-User-ID", matchers.S(pacttest.BrokeUser))
			b.JSONBody(matchers.Map{"delivery": matchers.S("pick-up")})
		}).
		WillRespondWith(http.StatusUnprocessableEntity, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/insufficient-funds"),
				"status": matchers.Like(http.StatusUnprocessableEntity),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newShopClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		product, err := client.GetProduct(ctx, pacttest.DeskLampID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product.ID != pacttest.DeskLampID || product.Price == "" {
			return fmt.Errorf("unexpected product %+v", product)
		}

		if _, err := client.GetProduct(ctx, pacttest.MissingProductID); err == nil {
			return fmt.Errorf("expected 404 for product %d", pacttest.MissingProductID)
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %v", err)
		}

		order, err := client.Checkout(ctx, pacttest.FundedUser, pacttest.CheckoutKey)
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if order.Order.ID == 0 || order.Balance != "70.00" {
			return fmt.Errorf("unexpected checkout %+v", order)
		}

		if _, err := client.Checkout(ctx, pacttest.BrokeUser, ""); err == nil {
			return fmt.Errorf("expected checkout of %s to fail", pacttest.BrokeUser)
		} else if apiErr, ok := err.(apiError); !ok || apiErr.problemType != "/problems/insufficient-funds" {
			return fmt.Errorf("expected insufficient funds, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type shopClient struct {
	baseURL    string
	httpClient *http.Client
}

func newShopClient(config pactconsumer.MockServerConfig) *shopClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &shopClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *shopClient) GetProduct(ctx context.Context, id int64) (*productPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/products/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	var payload productPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *shopClient) Checkout(ctx context.Context, userID, key string) (*checkoutPayload, error) {
	body, err := json.Marshal(map[string]string{"delivery": "pick-up"})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	var payload checkoutPayload
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *shopClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status:      status,
		problemType: problem.Type,
		title:       problem.Title,
		detail:      problem.Detail,
	}
}
