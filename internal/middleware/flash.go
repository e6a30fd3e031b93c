package middleware

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// FlashCookie carries one-time messages across a redirect.
const FlashCookie = "faithledger_flash"

const flashKey = "flashes"

// Flash levels, matching the alert styles of the layout.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "danger"
)

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// AddFlash queues a message for the next page the client renders.
func AddFlash(c *gin.Context, level, message string) {
	queued := pending(c)
	queued = append(queued, Flash{Level: level, Message: message})
	c.Set(flashKey, queued)

	raw, err := json.Marshal(queued)
	if err != nil {
		return
	}
	c.SetCookie(FlashCookie, base64.RawURLEncoding.EncodeToString(raw), 0, "/", "", false, true)
}

// Flashes returns and clears the messages carried by the request together
// with any queued while handling it.
func Flashes(c *gin.Context) []Flash {
	var out []Flash
	if raw, err := c.Cookie(FlashCookie); err == nil && raw != "" {
		if data, err := base64.RawURLEncoding.DecodeString(raw); err == nil {
			var carried []Flash
			if json.Unmarshal(data, &carried) == nil {
				out = append(out, carried...)
			}
		}
		c.SetCookie(FlashCookie, "", -1, "/", "", false, true)
	}

	queued := pending(c)
	if len(queued) > 0 {
		out = append(out, queued...)
		c.Set(flashKey, []Flash(nil))
		c.SetCookie(FlashCookie, "", -1, "/", "", false, true)
	}
	return out
}

func pending(c *gin.Context) []Flash {
	if v, ok := c.Get(flashKey); ok {
		if queued, ok := v.([]Flash); ok {
			return queued
		}
	}
	return nil
}
