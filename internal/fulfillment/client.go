// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
)

// maxErrorBody bounds how much of a failed response is kept for the log.
const maxErrorBody = 4 << 10

// Client is a typed HTTP client for the courier API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a [Client] for baseURL. Every call is bounded by timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateShipment books a delivery for request.
//
// # Errors
//   - apperr.Unprocessable: the courier rejected the booking (bad address, duplicate reference)
//   - apperr.Unavailable: transport failure or a courier-side error
func (client *Client) CreateShipment(ctx context.Context, request ShipmentRequest) (*Shipment, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("courier: encode shipment: %w", err))
	}

	response, err := client.do(ctx, http.MethodPost, "/shipments", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusOK || response.StatusCode == http.StatusCreated:
	case response.StatusCode >= 400 && response.StatusCode < 500:
		return nil, apperr.Unprocessable("Courier rejected the shipment: " + errorBody(response.Body))
	default:
		return nil, apperr.Unavailable(fmt.Errorf("courier: create shipment: HTTP %d: %s",
			response.StatusCode, errorBody(response.Body)))
	}

	var shipment Shipment
	if err := json.NewDecoder(response.Body).Decode(&shipment); err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("courier: decode shipment: %w", err))
	}
	if shipment.TrackingNumber == "" {
		return nil, apperr.Unavailable(fmt.Errorf("courier: shipment for %s has no tracking number", request.Reference))
	}
	return &shipment, nil
}

// Track returns the current state of trackingNumber.
//
// # Errors
//   - apperr.NotFound: the courier does not know the tracking number
//   - apperr.Unavailable: transport failure or a courier-side error
func (client *Client) Track(ctx context.Context, trackingNumber string) (*Tracking, error) {
	response, err := client.do(ctx, http.MethodGet, "/shipments/"+url.PathEscape(trackingNumber), nil)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperr.NotFound("Shipment")
	default:
		return nil, apperr.Unavailable(fmt.Errorf("courier: track %s: HTTP %d: %s",
			trackingNumber, response.StatusCode, errorBody(response.Body)))
	}

	var tracking Tracking
	if err := json.NewDecoder(response.Body).Decode(&tracking); err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("courier: decode tracking: %w", err))
	}
	if tracking.Events == nil {
		tracking.Events = []Event{}
	}
	return &tracking, nil
}

func (client *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("courier: build request: %w", err))
	}

	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if client.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+client.apiKey)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, apperr.Unavailable(fmt.Errorf("courier: %s %s: %w", method, path, err))
	}
	return response, nil
}

// errorBody reads a bounded error message from a failed response.
func errorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(data))
}
