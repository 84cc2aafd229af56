package mercadopago

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

const preferencesURL = "https://api.mercadopago.com/checkout/preferences"

var ErrDisabled = errors.New("mercado pago no está configurado")

// Client habla con la API de Checkout de Mercado Pago. Con el token vacío el
// cliente queda deshabilitado y las preferencias devuelven ErrDisabled.
type Client struct {
	accessToken string
	http        *fasthttp.Client
}

func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		http: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (c *Client) Enabled() bool {
	return c.accessToken != ""
}

type preferenceItem struct {
	Title      string  `json:"title"`
	CurrencyID string  `json:"currency_id"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
}

type preferencePayer struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type preferenceBackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type preferenceRequest struct {
	Items             []preferenceItem   `json:"items"`
	Payer             preferencePayer    `json:"payer"`
	BackURLs          preferenceBackURLs `json:"back_urls"`
	AutoReturn        string             `json:"auto_return"`
	ExternalReference string             `json:"external_reference"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// Preference es el link de pago ya creado del lado de Mercado Pago.
type Preference struct {
	ID        string
	InitPoint string
}

type PreferenceOptions struct {
	Title             string
	Amount            decimal.Decimal
	PayerEmail        string
	PayerName         string
	ExternalReference string
	BackURL           string
}

// CreatePreference crea una preferencia de checkout y devuelve el init_point
// para redirigir al afiliado.
func (c *Client) CreatePreference(opts PreferenceOptions) (*Preference, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	amount, _ := opts.Amount.Round(2).Float64()
	body := preferenceRequest{
		Items: []preferenceItem{{
			Title:      opts.Title,
			CurrencyID: "ARS",
			UnitPrice:  amount,
			Quantity:   1,
		}},
		Payer: preferencePayer{
			Email: opts.PayerEmail,
			Name:  opts.PayerName,
		},
		BackURLs: preferenceBackURLs{
			Success: opts.BackURL,
			Pending: opts.BackURL,
			Failure: opts.BackURL,
		},
		AutoReturn:        "approved",
		ExternalReference: opts.ExternalReference,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(preferencesURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.SetBody(payload)

	if err := c.http.Do(req, resp); err != nil {
		return nil, fmt.Errorf("error al llamar a Mercado Pago: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusCreated && resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("Mercado Pago respondió %d: %s", resp.StatusCode(), resp.Body())
	}

	var pr preferenceResponse
	if err := json.Unmarshal(resp.Body(), &pr); err != nil {
		return nil, fmt.Errorf("respuesta inválida de Mercado Pago: %w", err)
	}

	return &Preference{ID: pr.ID, InitPoint: pr.InitPoint}, nil
}
