package module

import (
	"time"

	"rektwatch/internal/platform/config"
)

// DefaultNPub is the rektbot liquidation feed
const DefaultNPub = "npub1r3kty2vkh247jgdu63wgkcsnktdtp9hc3e962eudg0getgvxs4gsz4uytc"

// DefaultRelays are queried when CORE_NOSTR_RELAYS is unset
var DefaultRelays = []string{
	"wss://relay.nostr.band",
	"wss://relay.primal.net",
	"wss://nostr.oxtr.dev",
	"wss://nos.lol",
	"wss://relay.damus.io",
	"wss://nostr.mom",
	"wss://relay.snort.social",
	"wss://wot.nostr.net",
	"wss://wot.utxo.one",
}

// Options holds the relay settings of the collector
type Options struct {
	NPub         string
	Relays       []string
	VerifySig    bool
	DialTimeout  time.Duration
	PingInterval time.Duration
	EOSETimeout  time.Duration
}

// FromConfig reads CORE_NOSTR_*
func FromConfig(cfg config.Conf) Options {
	nc := cfg.Prefix("CORE_NOSTR_")
	return Options{
		NPub:         nc.MayString("NPUB", DefaultNPub),
		Relays:       nc.MayCSV("RELAYS", DefaultRelays),
		VerifySig:    nc.MayBool("VERIFY_SIG", true),
		DialTimeout:  nc.MayDuration("DIAL_TIMEOUT", 10*time.Second),
		PingInterval: nc.MayDuration("PING_INTERVAL", 30*time.Second),
		EOSETimeout:  nc.MayDuration("EOSE_TIMEOUT", 5*time.Second),
	}
}
