package srvlookup

import (
	"testing"

	"github.com/miekg/dns"
)

func srv(priority, weight uint16, target string, port uint16) *dns.SRV {
	return &dns.SRV{
		Hdr:      dns.RR_Header{Rrtype: dns.TypeSRV},
		Priority: priority,
		Weight:   weight,
		Port:     port,
		Target:   target,
	}
}

func TestBestSRVPrefersLowestPriority(t *testing.T) {
	answers := []dns.RR{
		srv(20, 0, "b.example.com.", 25566),
		srv(10, 0, "a.example.com.", 25565),
	}
	best := bestSRV(answers)
	if best == nil || best.Target != "a.example.com." {
		t.Fatalf("expected lowest-priority record to win, got %+v", best)
	}
}

func TestBestSRVTiebreaksOnHighestWeight(t *testing.T) {
	answers := []dns.RR{
		srv(10, 1, "low-weight.example.com.", 25565),
		srv(10, 9, "high-weight.example.com.", 25566),
	}
	best := bestSRV(answers)
	if best == nil || best.Target != "high-weight.example.com." {
		t.Fatalf("expected highest-weight record to win a priority tie, got %+v", best)
	}
}

func TestBestSRVIgnoresNonSRVRecords(t *testing.T) {
	answers := []dns.RR{
		&dns.A{Hdr: dns.RR_Header{Rrtype: dns.TypeA}},
	}
	if best := bestSRV(answers); best != nil {
		t.Fatalf("expected no SRV match among non-SRV records, got %+v", best)
	}
}

func TestResolveLiteralIPSkipsLookup(t *testing.T) {
	target, err := Resolve("127.0.0.1", 25565)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Host != "127.0.0.1" || target.Port != 25565 {
		t.Errorf("expected literal IP host/port to pass through unchanged, got %+v", target)
	}
}
