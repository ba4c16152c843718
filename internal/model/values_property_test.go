package model

import (
	"testing"

	"pgregory.net/rapid"
)

// zoneBoolKeys are the wire keys carrying coerced booleans.
var zoneBoolKeys = []string{
	"advertise-subnets",
	"bridge-disable-mac-learning",
	"disable-arp-nd-suppression",
	"exitnodes-local-routing",
}

func genZoneConfig(t *rapid.T) ZoneConfig {
	return ZoneConfig{
		Zone:                     rapid.StringMatching(`[a-z][a-z0-9]{0,7}`).Draw(t, "zone"),
		Type:                     rapid.SampledFrom(ZoneTypes).Draw(t, "type"),
		AdvertiseSubnets:         rapid.Bool().Draw(t, "advertiseSubnets"),
		Bridge:                   rapid.StringMatching(`(vmbr[0-9])?`).Draw(t, "bridge"),
		BridgeDisableMACLearning: rapid.Bool().Draw(t, "bridgeDisableMACLearning"),
		Controller:               rapid.StringMatching(`(ctrl[0-9])?`).Draw(t, "controller"),
		DisableARPNDSuppression:  rapid.Bool().Draw(t, "disableARPNDSuppression"),
		ExitnodesLocalRouting:    rapid.Bool().Draw(t, "exitnodesLocalRouting"),
		MTU:                      rapid.IntRange(0, 9000).Draw(t, "mtu"),
		Tag:                      rapid.IntRange(0, 4094).Draw(t, "tag"),
		VLANProtocol:             rapid.SampledFrom([]string{"", "802.1q", "802.1ad"}).Draw(t, "vlanProtocol"),
		VRFVXLAN:                 rapid.IntRange(0, 1<<24-1).Draw(t, "vrfVxlan"),
		VXLANPort:                rapid.IntRange(0, 65535).Draw(t, "vxlanPort"),
	}
}

func TestZoneValuesBooleansAlwaysCoerced(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genZoneConfig(t).Values()
		for _, key := range zoneBoolKeys {
			if !v.Has(key) {
				continue
			}
			if got := v.Get(key); got != "0" && got != "1" {
				t.Fatalf("key %s carries %q, want 0 or 1", key, got)
			}
		}
	})
}

func TestZoneValuesSimpleNeverCarriesExcludedKeys(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := genZoneConfig(t)
		cfg.Type = ZoneSimple
		v := cfg.Values()
		for _, key := range simpleExcluded {
			if v.Has(key) {
				t.Fatalf("simple zone carries %s", key)
			}
		}
	})
}

func TestZoneValuesAlwaysCarryIdentityKeys(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := genZoneConfig(t)
		v := cfg.Values()
		if v.Get("zone") != cfg.Zone {
			t.Fatalf("zone key carries %q, want %q", v.Get("zone"), cfg.Zone)
		}
		if v.Get("type") != string(cfg.Type) {
			t.Fatalf("type key carries %q, want %q", v.Get("type"), cfg.Type)
		}
	})
}

func TestSubnetValuesBooleanCoercion(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := SubnetConfig{
			Subnet:  rapid.StringMatching(`10\.[0-9]{1,3}\.[0-9]{1,3}\.0/24`).Draw(t, "subnet"),
			Vnet:    rapid.StringMatching(`[a-z][a-z0-9]{0,7}`).Draw(t, "vnet"),
			Gateway: rapid.StringMatching(`(10\.0\.0\.1)?`).Draw(t, "gateway"),
			SNAT:    rapid.Bool().Draw(t, "snat"),
		}
		v := cfg.Values()
		if got := v.Get("snat"); got != "0" && got != "1" {
			t.Fatalf("snat carries %q, want 0 or 1", got)
		}
		if v.Has("vnet") {
			t.Fatal("subnet body must not carry the parent vnet")
		}
	})
}
