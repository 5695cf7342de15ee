package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vendora/backend/internal/domain/logistics"
	"github.com/vendora/backend/internal/domain/shared"
)

const (
	delhiveryCreatePath = "/api/cmu/create.json"
	delhiveryTrackPath  = "/api/v1/packages/json/"

	paymentModePickup  = "Pickup"
	paymentModeReplace = "REPL"
)

// DelhiveryAdapter implements logistics.CarrierGateway against the Delhivery
// panel API
type DelhiveryAdapter struct {
	config     *DelhiveryConfig
	httpClient *http.Client
}

// NewDelhiveryAdapter creates a new Delhivery adapter
func NewDelhiveryAdapter(config *DelhiveryConfig) (*DelhiveryAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &DelhiveryAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// CreateShipment books a shipment with the panel. The panel expects a
// form-encoded body whose data field carries the JSON payload. Transport
// failures and 5xx responses are retried with backoff; panel business
// errors are permanent.
func (a *DelhiveryAdapter) CreateShipment(ctx context.Context, req *logistics.ShipmentRequest) (*logistics.ShipmentResult, error) {
	payload := buildCreatePayload(req)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("delhivery: failed to marshal payload: %w", err)
	}

	form := url.Values{}
	form.Set("format", "json")
	form.Set("data", string(data))
	body := form.Encode()

	respBody, err := a.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+delhiveryCreatePath, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		httpReq.Header.Set("Authorization", "Token "+a.config.APIToken)
		return httpReq, nil
	})
	if err != nil {
		return nil, err
	}

	var createResp delhiveryCreateResponse
	if err := json.Unmarshal(respBody, &createResp); err != nil {
		return nil, shared.NewPermanentExternalError(shared.ExternalServiceCarrier, "BAD_RESPONSE", "Carrier returned an unparseable response")
	}

	if !createResp.Success || len(createResp.Packages) == 0 {
		return nil, shared.NewPermanentExternalError(shared.ExternalServiceCarrier, "BOOKING_REJECTED", bookingFailureMessage(&createResp))
	}

	pkg := createResp.Packages[0]
	if !strings.EqualFold(pkg.Status, "Success") || pkg.Waybill == "" {
		return nil, shared.NewPermanentExternalError(shared.ExternalServiceCarrier, "BOOKING_REJECTED", bookingFailureMessage(&createResp))
	}

	return &logistics.ShipmentResult{
		Success:     true,
		Waybill:     pkg.Waybill,
		RefNum:      pkg.RefNum,
		Remarks:     strings.Join(pkg.Remarks, "; "),
		RawResponse: string(respBody),
	}, nil
}

// TrackShipment fetches and normalizes the scan history for a waybill
func (a *DelhiveryAdapter) TrackShipment(ctx context.Context, waybill string) ([]logistics.TrackingEvent, error) {
	if waybill == "" {
		return nil, shared.NewDomainError("INVALID_WAYBILL", "Waybill cannot be empty")
	}

	trackURL := a.config.BaseURL + delhiveryTrackPath + "?waybill=" + url.QueryEscape(waybill)

	respBody, err := a.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Authorization", "Token "+a.config.APIToken)
		return httpReq, nil
	})
	if err != nil {
		return nil, err
	}

	var trackResp delhiveryTrackResponse
	if err := json.Unmarshal(respBody, &trackResp); err != nil {
		return nil, shared.NewPermanentExternalError(shared.ExternalServiceCarrier, "BAD_RESPONSE", "Carrier returned an unparseable tracking response")
	}

	if trackResp.Error != "" {
		return nil, shared.NewPermanentExternalError(shared.ExternalServiceCarrier, "TRACKING_FAILED", trackResp.Error)
	}
	if len(trackResp.ShipmentData) == 0 {
		return nil, shared.NewPermanentExternalError(shared.ExternalServiceCarrier, "WAYBILL_NOT_FOUND", "No shipment found for waybill "+waybill)
	}

	return normalizeScans(trackResp.ShipmentData[0].Shipment.Scans), nil
}

// doWithRetry executes the request, retrying transport errors and 5xx
// responses up to MaxRetries times. The request is rebuilt per attempt so
// the body reader is fresh.
func (a *DelhiveryAdapter) doWithRetry(ctx context.Context, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	backoff := a.config.RetryBackoff

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, shared.NewTransientExternalError(shared.ExternalServiceCarrier, "request cancelled", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		httpReq, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("delhivery: failed to create request: %w", err)
		}

		resp, err := a.httpClient.Do(httpReq)
		if err != nil {
			lastErr = shared.NewTransientExternalError(shared.ExternalServiceCarrier, "carrier unreachable", err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = shared.NewTransientExternalError(shared.ExternalServiceCarrier, "failed to read carrier response", readErr)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = shared.NewTransientExternalError(shared.ExternalServiceCarrier,
				fmt.Sprintf("carrier returned HTTP %d", resp.StatusCode), nil)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, shared.NewPermanentExternalError(shared.ExternalServiceCarrier,
				fmt.Sprintf("HTTP_%d", resp.StatusCode), "Carrier rejected the request: "+strings.TrimSpace(string(respBody)))
		}

		return respBody, nil
	}

	return nil, lastErr
}

func buildCreatePayload(req *logistics.ShipmentRequest) delhiveryCreatePayload {
	shipment := delhiveryShipment{
		Order:        req.OrderNumber,
		ProductsDesc: req.ProductsDesc,
		Quantity:     req.Quantity,
		TotalAmount:  req.TotalAmount,

		Name:    req.Drop.Name,
		Add:     req.Drop.Street,
		Pin:     req.Drop.Pin,
		City:    req.Drop.City,
		State:   req.Drop.State,
		Country: req.Drop.Country,
		Phone:   req.Drop.Phone,

		ReturnName:    req.Pickup.Name,
		ReturnAdd:     req.Pickup.Street,
		ReturnPin:     req.Pickup.Pin,
		ReturnCity:    req.Pickup.City,
		ReturnState:   req.Pickup.State,
		ReturnCountry: req.Pickup.Country,
		ReturnPhone:   req.Pickup.Phone,
	}

	switch req.Flow {
	case logistics.FlowREPL:
		shipment.PaymentMode = paymentModeReplace
		shipment.ExchangeDesc = req.ReturnDesc
	default:
		// RTO: the panel collects from the customer, so the customer is
		// the consignee address and payment mode is Pickup
		shipment.PaymentMode = paymentModePickup
		shipment.Name = req.Pickup.Name
		shipment.Add = req.Pickup.Street
		shipment.Pin = req.Pickup.Pin
		shipment.City = req.Pickup.City
		shipment.State = req.Pickup.State
		shipment.Country = req.Pickup.Country
		shipment.Phone = req.Pickup.Phone

		shipment.ReturnName = req.Drop.Name
		shipment.ReturnAdd = req.Drop.Street
		shipment.ReturnPin = req.Drop.Pin
		shipment.ReturnCity = req.Drop.City
		shipment.ReturnState = req.Drop.State
		shipment.ReturnCountry = req.Drop.Country
		shipment.ReturnPhone = req.Drop.Phone
	}

	return delhiveryCreatePayload{
		Shipments:      []delhiveryShipment{shipment},
		PickupLocation: delhiveryPickupLocation{Name: req.PickupLocationCode},
	}
}

func bookingFailureMessage(resp *delhiveryCreateResponse) string {
	if len(resp.Packages) > 0 && len(resp.Packages[0].Remarks) > 0 {
		return strings.Join(resp.Packages[0].Remarks, "; ")
	}
	if resp.Rmk != "" {
		return resp.Rmk
	}
	if resp.Error != "" {
		return resp.Error
	}
	return "Carrier rejected the shipment"
}

// Ensure DelhiveryAdapter implements CarrierGateway interface
var _ logistics.CarrierGateway = (*DelhiveryAdapter)(nil)
