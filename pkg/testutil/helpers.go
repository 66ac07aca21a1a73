package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
)

// NewHTTPRequest creates a new HTTP request for testing handlers
func NewHTTPRequest(method, path string, body interface{}) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// WithUserHeader adds the caller's id header to the request
func WithUserHeader(req *http.Request, userID int64) *http.Request {
	req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	return req
}

// WithDeviceHeaders adds the device headers recorded in API call logs
func WithDeviceHeaders(req *http.Request, deviceID, deviceType string) *http.Request {
	if deviceID != "" {
		req.Header.Set("X-Device-ID", deviceID)
	}
	if deviceType != "" {
		req.Header.Set("X-Device-Type", deviceType)
	}
	return req
}

// ExecuteRequest executes an HTTP request and returns the response recorder
func ExecuteRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// PtrString returns a pointer to the string
func PtrString(s string) *string {
	return &s
}

// PtrInt64 returns a pointer to the int64
func PtrInt64(i int64) *int64 {
	return &i
}
