package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCookieDomain(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{baseURL: "https://www.amazon.com", want: ".amazon.com"},
		{baseURL: "https://amazon.com.mx", want: ".amazon.com.mx"},
		{baseURL: "https://www.amazon.de/", want: ".amazon.de"},
		{baseURL: "not a url at all", want: ".amazon.com"},
		{baseURL: "", want: ".amazon.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cookieDomain(tt.baseURL), "baseURL=%q", tt.baseURL)
	}
}
