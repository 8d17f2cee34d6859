package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/waste-collection-api/pkg/middleware/requestid"
)

// Keys reported in the envelope meta.
const (
	MetaCacheHit       = "cache_hit"
	MetaProcessingTime = "processing_time_ms"
	MetaRequestID      = "request_id"
)

const (
	responseMetaKey  = "response_meta"
	responseStartKey = "response_meta_start"
)

// WithResponseMeta starts the clock reported as processing_time_ms.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseStartKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the payload was served from the stats cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, MetaCacheHit, hit)
}

// SetMeta stores a value to report with the response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	meta, ok := c.Get(responseMetaKey)
	typed, _ := meta.(map[string]interface{})
	if !ok || typed == nil {
		typed = map[string]interface{}{}
		c.Set(responseMetaKey, typed)
	}
	typed[key] = value
}

// ResponseMeta returns a copy of the recorded values stamped with the request id and
// the elapsed processing time. It is nil when there is nothing to report.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := map[string]interface{}{}
	if recorded, ok := c.Get(responseMetaKey); ok {
		if typed, ok := recorded.(map[string]interface{}); ok {
			for k, v := range typed {
				meta[k] = v
			}
		}
	}
	if id := requestid.Value(c); id != "" {
		meta[MetaRequestID] = id
	}
	if start, ok := c.Get(responseStartKey); ok {
		if t, ok := start.(time.Time); ok {
			meta[MetaProcessingTime] = time.Since(t).Milliseconds()
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
