package serp

import (
	"net/http"
	"testing"
)

func TestDetectBlock_GoogleSorry(t *testing.T) {
	detected, source := DetectBlock(http.StatusTooManyRequests, http.Header{}, nil, DefaultDetectors())
	if !detected || source != "Google" {
		t.Errorf("expected Google detection on 429, got %v/%s", detected, source)
	}

	body := []byte(`<html>Our systems have detected unusual traffic from your computer network.</html>`)
	detected, source = DetectBlock(http.StatusOK, http.Header{}, body, DefaultDetectors())
	if !detected || source != "Google" {
		t.Errorf("expected Google detection on sorry page body, got %v/%s", detected, source)
	}
}

func TestDetectBlock_Recaptcha(t *testing.T) {
	body := []byte(`<html><script src="https://www.gstatic.com/recaptcha/api.js"></script></html>`)
	detected, source := DetectBlock(http.StatusOK, http.Header{}, body, DefaultDetectors())
	if !detected || source != "reCAPTCHA" {
		t.Errorf("expected reCAPTCHA detection, got %v/%s", detected, source)
	}
}

func TestDetectBlock_Cloudflare(t *testing.T) {
	header := http.Header{}
	header.Set("Server", "cloudflare")
	detected, source := DetectBlock(http.StatusForbidden, header, nil, DefaultDetectors())
	if !detected || source != "Cloudflare" {
		t.Errorf("expected Cloudflare detection via header, got %v/%s", detected, source)
	}

	body := []byte(`<html><title>Attention Required! | Cloudflare</title></html>`)
	detected, source = DetectBlock(http.StatusServiceUnavailable, http.Header{}, body, DefaultDetectors())
	if !detected || source != "Cloudflare" {
		t.Errorf("expected Cloudflare detection via body, got %v/%s", detected, source)
	}
}

func TestDetectBlock_CleanResponse(t *testing.T) {
	body := []byte(`<html><body><h3>Ordinary results page</h3></body></html>`)
	detected, source := DetectBlock(http.StatusOK, http.Header{}, body, DefaultDetectors())
	if detected {
		t.Errorf("expected no detection for a clean page, got %s", source)
	}
}
