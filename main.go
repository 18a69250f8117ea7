package main

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/cors"
	prometheus "github.com/hertz-contrib/monitor-prometheus"
	"github.com/wenfa-tech/grammar-core-api/biz/router"
	"github.com/wenfa-tech/grammar-core-api/provider"
)

func main() {
	provider.Init()
	c := provider.Get().Config

	h := server.Default(
		server.WithHostPorts(c.ListenOn),
		server.WithTracer(prometheus.NewServerTracer(c.MetricsListenOn, "/metrics")),
	)
	h.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Client-Id"},
		ExposeHeaders: []string{"Content-Length"},
	}))
	router.Register(h)
	h.Spin()
}
