// Package relay routes upstream requests through interchangeable public
// CORS relays, falling back along an ordered chain.
package relay

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Relay is one interchangeable relay endpoint. Wrap turns a target URL
// into the relayed request URL; Unwrap strips the relay's response
// envelope (if any) to recover the upstream payload.
type Relay interface {
	Name() string
	Wrap(target string) string
	Unwrap(body []byte) ([]byte, error)
}

// FromNames builds relays in the configured order. Unknown names are an
// error so a typo in config fails loudly at startup.
func FromNames(names []string) ([]Relay, error) {
	relays := make([]Relay, 0, len(names))
	for _, name := range names {
		switch name {
		case "allorigins":
			relays = append(relays, AllOrigins{})
		case "corsproxy":
			relays = append(relays, CorsProxyIO{})
		case "codetabs":
			relays = append(relays, Codetabs{})
		default:
			return nil, fmt.Errorf("unknown relay %q", name)
		}
	}
	return relays, nil
}

// AllOrigins relays through api.allorigins.win, which wraps the payload
// in a JSON envelope.
type AllOrigins struct{}

func (AllOrigins) Name() string { return "allorigins" }

func (AllOrigins) Wrap(target string) string {
	return "https://api.allorigins.win/get?url=" + url.QueryEscape(target)
}

func (AllOrigins) Unwrap(body []byte) ([]byte, error) {
	var envelope struct {
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding allorigins envelope: %w", err)
	}
	if envelope.Contents == "" {
		return nil, fmt.Errorf("empty allorigins contents")
	}
	return []byte(envelope.Contents), nil
}

// CorsProxyIO relays through corsproxy.io, a raw passthrough.
type CorsProxyIO struct{}

func (CorsProxyIO) Name() string { return "corsproxy" }

func (CorsProxyIO) Wrap(target string) string {
	return "https://corsproxy.io/?url=" + url.QueryEscape(target)
}

func (CorsProxyIO) Unwrap(body []byte) ([]byte, error) { return body, nil }

// Codetabs relays through api.codetabs.com, a raw passthrough.
type Codetabs struct{}

func (Codetabs) Name() string { return "codetabs" }

func (Codetabs) Wrap(target string) string {
	return "https://api.codetabs.com/v1/proxy?quest=" + url.QueryEscape(target)
}

func (Codetabs) Unwrap(body []byte) ([]byte, error) { return body, nil }
