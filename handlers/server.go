package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"soulp/logs"
)

// Server HTTP 服务器生命周期
type Server struct {
	hm  *HandlerManager
	srv *http.Server
}

func NewServer(hm *HandlerManager) *Server {
	return &Server{
		hm: hm,
		srv: &http.Server{
			Addr:         hm.cfg.ListenAddr,
			Handler:      hm.Router(),
			ReadTimeout:  hm.cfg.ReadTimeout,
			WriteTimeout: hm.cfg.WriteTimeout,
		},
	}
}

// Serve 在 ln 上服务直到 Shutdown；正常关闭返回 nil
func (s *Server) Serve(ln net.Listener) error {
	logs.Info("[HTTP] listening on %s", ln.Addr().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe 监听配置的地址
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown 优雅关闭，超时由 ctx 控制
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hm.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.hm.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.srv.Shutdown(ctx)
}
