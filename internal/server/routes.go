package server

import (
	"shoecatalog/internal/config"
	"shoecatalog/internal/handler"
)

type Handlers struct {
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	AdminAudit   *handler.AdminAuditLogHandler
}

// RegisterRoutes は公開APIと管理者APIを登録する
func (s *Server) RegisterRoutes(auth config.AuthConfig, h Handlers) {
	h.Product.RegisterRoutes(s.echo)
	h.AdminProduct.RegisterRoutes(s.echo, auth)
	h.AdminAudit.RegisterRoutes(s.echo, auth)
}
