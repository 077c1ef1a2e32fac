package middleware

import (
	"promptgate/internal/core"
	"promptgate/internal/pkg/response"
	"promptgate/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Cors struct {
	trace *telemetry.Trace
}

func NewCors(trace *telemetry.Trace) *Cors {
	return &Cors{trace: trace}
}

// CorsHandler 設定 CORS，並以 WithSpan 紀錄設定（跳過特定路徑的 tracing，但仍套用 CORS）
func (m *Cors) CorsHandler() gin.HandlerFunc {
	cfg := cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:   []string{response.RequestIDHeader, response.AppVersionHeader},
	}
	corsHandler := cors.New(cfg)

	type corsMeta struct {
		AllowMethods  []string `trace:"http.cors.allow_methods"`
		AllowHeaders  []string `trace:"http.cors.allow_headers"`
		ExposeHeaders []string `trace:"http.cors.expose_headers"`
	}

	return func(c *gin.Context) {
		if skipObservability(c.FullPath()) {
			corsHandler(c)
			return
		}

		_, span, end := m.trace.WithSpan(m.trace.GetTraceContext(c), string(core.SpanCorsMiddleware))
		m.trace.ApplyTraceAttributes(span, corsMeta{
			AllowMethods:  cfg.AllowMethods,
			AllowHeaders:  cfg.AllowHeaders,
			ExposeHeaders: cfg.ExposeHeaders,
		})
		end(nil)

		// 執行實際的 CORS middleware（preflight 會在此中止）
		corsHandler(c)
	}
}
