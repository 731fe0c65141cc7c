package engine

import (
	"context"
	"crypto/tls"
	"strconv"

	"github.com/WhileEndless/rawhttp2/pkg/rawhttplog"
	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/stream"
	"github.com/WhileEndless/rawhttp2/pkg/timing"
	"github.com/WhileEndless/rawhttp2/pkg/tlsconfig"
	"github.com/WhileEndless/rawhttp2/pkg/urlparts"
)

// open establishes the transport stream for comps per spec.md §4.8,
// grounded on original_source's get_connection_stream: TCP dial, then
// apply the configured read/write timeout to the raw socket, then — only
// for HTTPS — wrap it in a TLS client connection built from the request's
// trust store and certificate policy. The returned stream is a
// stream.Blocking; callers needing cooperative semantics wrap it with
// stream.AsCooperative. timer, if non-nil, records the TCP and TLS phase
// boundaries spec.md §8's timing enrichment tracks; name resolution happens
// inside the TCP dial and is counted there, not timed as a DNS phase.
func open(ctx context.Context, comps urlparts.Components, cfg *request.Config, tmp *request.Tmp, timer *timing.Timer) (stream.Blocking, error) {
	addr := comps.Host + ":" + portString(comps.EffectivePort())

	if timer != nil {
		timer.StartTCP()
	}
	conn, err := stream.DialTCP(ctx, addr, cfg.Timeout())
	if timer != nil {
		timer.EndTCP()
	}
	if err != nil {
		rawhttplog.ConnectFailed(comps.Host, comps.EffectivePort(), err)
		return nil, err
	}

	plain := stream.NewPlain(conn)
	if err := stream.ApplyTimeouts(plain, cfg.Timeout()); err != nil {
		conn.Close()
		return nil, err
	}

	if !comps.Protocol.IsHTTPS() {
		return plain, nil
	}

	tlsCfg := buildTLSConfig(comps.Host, cfg, tmp)
	if timer != nil {
		timer.StartTLS()
	}
	tlsConn, err := stream.WrapTLS(ctx, conn, tlsCfg)
	if timer != nil {
		timer.EndTLS()
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream.NewPlain(tlsConn), nil
}

// buildTLSConfig merges the request's TLS policy the way the builder
// documents its precedence: a caller-supplied base config (Tmp.RootCert or
// Config.RootCAs) is cloned, then ServerName/InsecureSkipVerify/client
// certificate override it if set. A caller who supplies no explicit
// MinVersion gets pkg/tlsconfig.ProfileSecure (TLS 1.2+) and its matching
// cipher suites as the floor, rather than crypto/tls's own unrestricted
// zero-value default; a caller who did set one is left untouched.
func buildTLSConfig(host string, cfg *request.Config, tmp *request.Tmp) *tls.Config {
	var base *tls.Config
	if tmp != nil && tmp.RootCert != nil {
		base = tmp.RootCert.Clone()
	} else if cfg.RootCAs != nil {
		base = cfg.RootCAs.Clone()
	} else {
		base = &tls.Config{}
	}

	if base.MinVersion == 0 {
		tlsconfig.ApplyVersionProfile(base, tlsconfig.ProfileSecure)
		tlsconfig.ApplyCipherSuites(base, base.MinVersion)
	}

	if base.ServerName == "" {
		base.ServerName = host
	}
	if cfg.ServerName != "" {
		base.ServerName = cfg.ServerName
	}
	if cfg.InsecureSkipVerify {
		base.InsecureSkipVerify = true
	}
	if len(cfg.ClientCertPEM) > 0 && len(cfg.ClientKeyPEM) > 0 {
		cert, err := tls.X509KeyPair(cfg.ClientCertPEM, cfg.ClientKeyPEM)
		if err == nil {
			base.Certificates = append(base.Certificates, cert)
		}
	}
	return base
}

func portString(p int) string {
	return strconv.Itoa(p)
}
