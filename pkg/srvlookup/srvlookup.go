// Package srvlookup resolves the `_minecraft._tcp.<host>` SRV record real
// clients consult before connecting on a literal host/port, per the
// supplemented SRV-resolution feature. Resolution failure or a literal IP
// host falls back to the configured host/port unchanged.
package srvlookup

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// Target is the host/port a client should actually dial.
type Target struct {
	Host string
	Port uint16
}

// Resolve looks up _minecraft._tcp.<host> and returns the highest-priority
// SRV target, or (host, port) unchanged if no record exists, the host is a
// literal IP, or the lookup fails for any reason.
func Resolve(host string, port uint16) (Target, error) {
	fallback := Target{Host: host, Port: port}

	if net.ParseIP(host) != nil {
		return fallback, nil
	}

	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return fallback, nil
	}
	resolver := net.JoinHostPort(conf.Servers[0], conf.Port)

	client := new(dns.Client)
	msg := new(dns.Msg)
	msg.SetQuestion(fmt.Sprintf("_minecraft._tcp.%s.", host), dns.TypeSRV)

	reply, _, err := client.Exchange(msg, resolver)
	if err != nil || reply == nil || len(reply.Answer) == 0 {
		return fallback, nil
	}

	best := bestSRV(reply.Answer)
	if best == nil {
		return fallback, nil
	}
	return Target{Host: strings.TrimSuffix(best.Target, "."), Port: best.Port}, nil
}

// bestSRV picks the lowest-priority (highest-precedence), then
// highest-weight record, per RFC 2782's selection rule simplified to a
// single deterministic pick.
func bestSRV(answers []dns.RR) *dns.SRV {
	var best *dns.SRV
	for _, rr := range answers {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}
		if best == nil || srv.Priority < best.Priority ||
			(srv.Priority == best.Priority && srv.Weight > best.Weight) {
			best = srv
		}
	}
	return best
}
