package redis

import "strings"

const keyNamespace = "rm"

const (
	kindIdempotency = "idempotency"
	kindRateLimit   = "rate_limit"
	kindCart        = "cart"
)

// key joins the namespace, kind and non-blank parts with colons.
func key(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	b.WriteByte(':')
	b.WriteString(kind)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return key(kindIdempotency, scope, id)
}

// CartKey names the JSON document holding one session's cart.
func (c *Client) CartKey(sessionID string) string {
	return key(kindCart, sessionID)
}
