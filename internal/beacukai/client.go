// Package beacukai implements the SOAP client for the Beacukai TPS Online
// web service. Requests wrap a customs XML document, HTML-escaped, inside a
// SOAP 1.1 envelope together with the plaintext TPS credentials; the service
// answers with a single result element whose text settles the exchange.
package beacukai

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dandeat/barkir-core/internal/config"
)

const (
	soapActionCoco        = "http://services.beacukai.go.id/CoarriCodeco_Container"
	soapActionPLPSubmit   = "http://services.beacukai.go.id/PermohonanPLP"
	soapActionPLPResponse = "http://services.beacukai.go.id/GetResponPlp_onDemands"

	// The public TPS Online pool sits behind a BIGip load balancer that
	// expects this persistence cookie on gate movement submissions.
	cocoCookie = "BIGipServerPOOL_DJBC_TPS_ONLINE_PUBLIK=958263562.47873.0000"
)

// Client talks to the TPS Online service endpoint.
type Client struct {
	cfg          *config.BeacukaiConfig
	submitClient *http.Client
	plpClient    *http.Client
}

// NewClient builds a client using the configured timeouts: gate movement
// submissions run on the longer submit timeout, PLP calls on the shorter one.
func NewClient(cfg *config.BeacukaiConfig) *Client {
	return &Client{
		cfg:          cfg,
		submitClient: &http.Client{Timeout: cfg.SubmitTimeout},
		plpClient:    &http.Client{Timeout: cfg.PLPTimeout},
	}
}

// SubmitCoco posts a container gate movement document and returns the
// service's textual verdict.
func (c *Client) SubmitCoco(ctx context.Context, documentXML string) (string, error) {
	envelope := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<CoarriCodeco_Container xmlns="http://services.beacukai.go.id/">
<fStream>%s</fStream>
<Username>%s</Username>
<Password>%s</Password>
</CoarriCodeco_Container>
</soap:Body>
</soap:Envelope>`, html.EscapeString(documentXML), c.cfg.Username, c.cfg.Password)

	body, err := c.post(ctx, c.submitClient, soapActionCoco, envelope, true)
	if err != nil {
		return "", err
	}
	return extractResultText(body, "CoarriCodeco_ContainerResult")
}

// SubmitPLP posts a relocation permit request document and returns the
// service's textual verdict.
func (c *Client) SubmitPLP(ctx context.Context, documentXML string) (string, error) {
	envelope := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<PermohonanPLP xmlns="http://services.beacukai.go.id/">
<fStream>%s</fStream>
<Username>%s</Username>
<Password>%s</Password>
</PermohonanPLP>
</soap:Body>
</soap:Envelope>`, html.EscapeString(documentXML), c.cfg.Username, c.cfg.Password)

	body, err := c.post(ctx, c.plpClient, soapActionPLPSubmit, envelope, false)
	if err != nil {
		return "", err
	}
	return extractResultText(body, "PermohonanPLPResult")
}

// GetPLPResponse polls for the decision on a previously submitted relocation
// permit request. The returned text is either a status message or an escaped
// XML fragment carrying the decision; the caller parses the fragment.
func (c *Client) GetPLPResponse(ctx context.Context, warehouseCode, refNumber string) (string, error) {
	envelope := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<GetResponPlp_onDemands xmlns="http://services.beacukai.go.id/">
<UserName>%s</UserName>
<Password>%s</Password>
<No_plp></No_plp><Tgl_plp></Tgl_plp>
<KdGudang>%s</KdGudang>
<RefNumber>%s</RefNumber>
</GetResponPlp_onDemands>
</soap:Body>
</soap:Envelope>`, c.cfg.Username, c.cfg.Password, warehouseCode, refNumber)

	body, err := c.post(ctx, c.plpClient, soapActionPLPResponse, envelope, false)
	if err != nil {
		return "", err
	}
	return extractResultText(body, "GetResponPlp_onDemandsResult")
}

func (c *Client) post(ctx context.Context, httpClient *http.Client, soapAction, envelope string, withCookie bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ServiceURL, strings.NewReader(envelope))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)
	if withCookie {
		req.Header.Set("Cookie", cocoCookie)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: service returned status %d", ErrTransport, resp.StatusCode)
	}

	slog.Debug("Beacukai response received", "action", soapAction, "status", resp.StatusCode)
	return string(body), nil
}
