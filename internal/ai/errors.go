package ai

import (
	"errors"
	"fmt"
	"time"
)

const (
	KindUnsupportedModel  = "unsupported_model"
	KindVendorAPI         = "vendor_api"
	KindMalformedResponse = "malformed_response"
	KindTimeout           = "timeout"
	KindUnknown           = "unknown"
)

// UnsupportedModelError возвращается роутером, когда модель не относится ни к одному вендору.
type UnsupportedModelError struct {
	Model  string
	Vendor Vendor
}

func (e *UnsupportedModelError) Error() string {
	if e.Vendor != VendorUnknown {
		return fmt.Sprintf("unsupported model %q: %s is not configured", e.Model, e.Vendor)
	}
	return fmt.Sprintf("unsupported model %q", e.Model)
}

// VendorAPIError описывает отказ самого вызова вендора: сеть, авторизация, лимиты, параметры.
type VendorAPIError struct {
	Vendor     Vendor
	StatusCode int
	Message    string
	Err        error
}

func (e *VendorAPIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s api error (status %d): %s", e.Vendor, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s api error: %s", e.Vendor, e.Message)
}

func (e *VendorAPIError) Unwrap() error {
	return e.Err
}

// MalformedResponseError означает успешный ответ без ожидаемого текста.
type MalformedResponseError struct {
	Vendor Vendor
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Vendor, e.Reason)
}

type TimeoutError struct {
	Vendor  Vendor
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s request timed out after %s", e.Vendor, e.Timeout)
	}
	return fmt.Sprintf("%s request timed out", e.Vendor)
}

// ErrorKind классифицирует ошибку для логов и метрик.
func ErrorKind(err error) string {
	var unsupported *UnsupportedModelError
	var apiErr *VendorAPIError
	var malformed *MalformedResponseError
	var timeout *TimeoutError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &unsupported):
		return KindUnsupportedModel
	case errors.As(err, &timeout):
		return KindTimeout
	case errors.As(err, &apiErr):
		return KindVendorAPI
	case errors.As(err, &malformed):
		return KindMalformedResponse
	default:
		return KindUnknown
	}
}
