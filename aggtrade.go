// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"

	"github.com/incepthink/aggtrade-backend-sub003/internal/cli"
	"github.com/incepthink/aggtrade-backend-sub003/internal/config"
	"github.com/incepthink/aggtrade-backend-sub003/internal/handler"
	"github.com/incepthink/aggtrade-backend-sub003/internal/svc"
)

var configFile = flag.String("f", "etc/aggtrade.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cli.LogConfigSummary(cfg)

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(cfg)
	handler.RegisterErrorHandler()
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
