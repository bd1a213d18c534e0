package config

import (
	"fmt"

	grpcpkg "github.com/goclaw/anima/pkg/grpc"
)

// ToGRPCConfig converts config.GRPCConfig to pkg/grpc.Config.
func (g *GRPCConfig) ToGRPCConfig() *grpcpkg.Config {
	cfg := &grpcpkg.Config{
		Address:          fmt.Sprintf(":%d", g.Port),
		MaxRecvMsgSize:   g.MaxRecvMsgSize,
		MaxSendMsgSize:   g.MaxSendMsgSize,
		EnableReflection: g.EnableReflection,
	}

	if g.TLS.Enabled {
		cfg.TLS = &grpcpkg.TLSConfig{
			Enabled:  true,
			CertFile: g.TLS.CertFile,
			KeyFile:  g.TLS.KeyFile,
		}
	}

	cfg.Keepalive = &grpcpkg.KeepaliveConfig{
		MaxIdleSeconds: g.Keepalive.MaxIdleSeconds,
		MaxAgeSeconds:  g.Keepalive.MaxAgeSeconds,
		TimeSeconds:    g.Keepalive.TimeSeconds,
		TimeoutSeconds: g.Keepalive.TimeoutSeconds,
	}

	return cfg
}
