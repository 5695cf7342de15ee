package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/backend/internal/domain/logistics"
	"github.com/vendora/backend/internal/domain/shared"
)

func testConfig(baseURL string) *DelhiveryConfig {
	return &DelhiveryConfig{
		BaseURL:      baseURL,
		APIToken:     "test-token",
		Timeout:      2 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}
}

func shipmentRequest(flow logistics.Flow) *logistics.ShipmentRequest {
	return &logistics.ShipmentRequest{
		Flow:               flow,
		OrderNumber:        "ORD-1001",
		PickupLocationCode: "ACME-A1B2C3D4",
		Pickup: logistics.Address{
			Name: "Asha Rao", Street: "12 Lake View Road", City: "Bengaluru",
			State: "Karnataka", Country: "India", Pin: "560034", Phone: "9800000000",
		},
		Drop: logistics.Address{
			Name: "Acme Apparel", Street: "Plot 7", City: "Gurugram",
			State: "Haryana", Country: "India", Pin: "122001", Phone: "9100000000",
		},
		ProductsDesc: "Acme Crew Tee (M)",
		Quantity:     1,
		TotalAmount:  "1499",
	}
}

func decodePayload(t *testing.T, r *http.Request) delhiveryCreatePayload {
	t.Helper()
	require.NoError(t, r.ParseForm())
	assert.Equal(t, "json", r.PostFormValue("format"))

	var payload delhiveryCreatePayload
	require.NoError(t, json.Unmarshal([]byte(r.PostFormValue("data")), &payload))
	return payload
}

func TestCreateShipment(t *testing.T) {
	t.Run("books pickup shipment", func(t *testing.T) {
		var captured delhiveryCreatePayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, delhiveryCreatePath, r.URL.Path)
			assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
			captured = decodePayload(t, r)
			json.NewEncoder(w).Encode(delhiveryCreateResponse{
				Success: true,
				Packages: []delhiveryPackage{
					{Waybill: "WB-777", RefNum: "ORD-1001", Status: "Success"},
				},
			})
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		result, err := adapter.CreateShipment(context.Background(), shipmentRequest(logistics.FlowRTO))

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "WB-777", result.Waybill)
		assert.NotEmpty(t, result.RawResponse)

		require.Len(t, captured.Shipments, 1)
		assert.Equal(t, "Pickup", captured.Shipments[0].PaymentMode)
		assert.Equal(t, "Asha Rao", captured.Shipments[0].Name)
		assert.Equal(t, "Acme Apparel", captured.Shipments[0].ReturnName)
		assert.Equal(t, "ACME-A1B2C3D4", captured.PickupLocation.Name)
	})

	t.Run("replacement uses REPL payment mode", func(t *testing.T) {
		var captured delhiveryCreatePayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = decodePayload(t, r)
			json.NewEncoder(w).Encode(delhiveryCreateResponse{
				Success:  true,
				Packages: []delhiveryPackage{{Waybill: "WB-900", Status: "Success"}},
			})
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		req := shipmentRequest(logistics.FlowREPL)
		req.ReturnDesc = "Acme Crew Tee (S)"
		_, err = adapter.CreateShipment(context.Background(), req)

		require.NoError(t, err)
		require.Len(t, captured.Shipments, 1)
		assert.Equal(t, "REPL", captured.Shipments[0].PaymentMode)
		assert.Equal(t, "Acme Apparel", captured.Shipments[0].Name)
		assert.Equal(t, "Acme Crew Tee (S)", captured.Shipments[0].ExchangeDesc)
	})

	t.Run("panel business rejection is permanent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(delhiveryCreateResponse{
				Success: false,
				Packages: []delhiveryPackage{
					{Status: "Fail", Remarks: []string{"ClientWarehouse not registered"}},
				},
			})
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		_, err = adapter.CreateShipment(context.Background(), shipmentRequest(logistics.FlowRTO))

		require.Error(t, err)
		var extErr *shared.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.False(t, extErr.Transient)
		assert.Contains(t, extErr.Message, "ClientWarehouse not registered")
	})

	t.Run("retries on 5xx then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(delhiveryCreateResponse{
				Success:  true,
				Packages: []delhiveryPackage{{Waybill: "WB-1", Status: "Success"}},
			})
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		result, err := adapter.CreateShipment(context.Background(), shipmentRequest(logistics.FlowRTO))

		require.NoError(t, err)
		assert.Equal(t, "WB-1", result.Waybill)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		_, err = adapter.CreateShipment(context.Background(), shipmentRequest(logistics.FlowRTO))

		require.Error(t, err)
		var extErr *shared.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.True(t, extErr.Transient)
	})

	t.Run("4xx is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		_, err = adapter.CreateShipment(context.Background(), shipmentRequest(logistics.FlowRTO))

		require.Error(t, err)
		var extErr *shared.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.False(t, extErr.Transient)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestTrackShipment(t *testing.T) {
	t.Run("normalizes flat scan list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, delhiveryTrackPath, r.URL.Path)
			assert.Equal(t, "WB-777", r.URL.Query().Get("waybill"))
			json.NewEncoder(w).Encode(delhiveryTrackResponse{
				ShipmentData: []delhiveryShipmentData{{
					Shipment: delhiveryTrackedShipment{
						AWB: "WB-777",
						Scans: []delhiveryScan{
							{Scan: "In Transit", ScanDateTime: "2026-02-11T09:15:00", Instructions: "Left origin facility"},
							{Scan: "Picked Up", ScanDateTime: "2026-02-10T14:30:00", Instructions: "Shipment picked up"},
						},
					},
				}},
			})
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		events, err := adapter.TrackShipment(context.Background(), "WB-777")

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "Picked Up", events[0].Status)
		assert.Equal(t, "In Transit", events[1].Status)
		assert.Equal(t, "10 Feb 2026, 02:30 PM", events[0].DisplayTime)
	})

	t.Run("normalizes nested scan detail shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(delhiveryTrackResponse{
				ShipmentData: []delhiveryShipmentData{{
					Shipment: delhiveryTrackedShipment{
						Scans: []delhiveryScan{
							{ScanDetail: &delhiveryScanDetail{
								Scan: "Delivered", ScannedDate: "2026-02-12 18:05:00", StatusDetails: "Delivered to consignee",
							}},
						},
					},
				}},
			})
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		events, err := adapter.TrackShipment(context.Background(), "WB-778")

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Delivered", events[0].Status)
		assert.Equal(t, "Delivered to consignee", events[0].Detail)
	})

	t.Run("unknown waybill", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(delhiveryTrackResponse{})
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		_, err = adapter.TrackShipment(context.Background(), "WB-999")

		require.Error(t, err)
		var extErr *shared.ExternalServiceError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, "WAYBILL_NOT_FOUND", extErr.Code)
	})

	t.Run("waybill is escaped", func(t *testing.T) {
		var rawQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode(delhiveryTrackResponse{
				ShipmentData: []delhiveryShipmentData{{}},
			})
		}))
		defer server.Close()

		adapter, err := NewDelhiveryAdapter(testConfig(server.URL))
		require.NoError(t, err)

		_, err = adapter.TrackShipment(context.Background(), "WB 77&x=1")

		require.NoError(t, err)
		assert.Equal(t, "waybill="+url.QueryEscape("WB 77&x=1"), rawQuery)
	})
}

func TestNormalizeScans(t *testing.T) {
	t.Run("unparseable times sort first and keep order", func(t *testing.T) {
		events := normalizeScans([]delhiveryScan{
			{Scan: "Manifested", ScanDateTime: "2026-02-09T08:00:00"},
			{Scan: "Unknown A", ScanDateTime: "not-a-time"},
			{Scan: "Unknown B"},
		})

		require.Len(t, events, 3)
		assert.Equal(t, "Unknown A", events[0].Status)
		assert.Equal(t, "Unknown B", events[1].Status)
		assert.Equal(t, "Manifested", events[2].Status)
		assert.Empty(t, events[0].DisplayTime)
	})

	t.Run("missing fields become empty strings", func(t *testing.T) {
		events := normalizeScans([]delhiveryScan{{}})

		require.Len(t, events, 1)
		assert.Equal(t, "", events[0].Status)
		assert.Equal(t, "", events[0].Detail)
		assert.True(t, events[0].Time.IsZero())
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, normalizeScans(nil))
	})
}
