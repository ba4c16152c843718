package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZoneTypeValid(t *testing.T) {
	for _, zt := range ZoneTypes {
		assert.True(t, zt.Valid(), "type %s should be valid", zt)
	}
	assert.False(t, ZoneType("bridge").Valid())
	assert.False(t, ZoneType("").Valid())
}

func TestValidVLANProtocol(t *testing.T) {
	assert.True(t, ValidVLANProtocol("802.1q"))
	assert.True(t, ValidVLANProtocol("802.1ad"))
	assert.False(t, ValidVLANProtocol("802.1x"))
	assert.False(t, ValidVLANProtocol(""))
}

func TestZoneConfigValues(t *testing.T) {
	cfg := ZoneConfig{
		Zone:                     "zone-01",
		Type:                     ZoneVXLAN,
		AdvertiseSubnets:         true,
		Bridge:                   "vmbr0",
		BridgeDisableMACLearning: true,
		MTU:                      1450,
		Peers:                    "10.0.0.1,10.0.0.2",
		VXLANPort:                4789,
	}

	v := cfg.Values()
	assert.Equal(t, "zone-01", v.Get("zone"))
	assert.Equal(t, "vxlan", v.Get("type"))
	assert.Equal(t, "1", v.Get("advertise-subnets"))
	assert.Equal(t, "vmbr0", v.Get("bridge"))
	assert.Equal(t, "1", v.Get("bridge-disable-mac-learning"))
	assert.Equal(t, "0", v.Get("disable-arp-nd-suppression"))
	assert.Equal(t, "0", v.Get("exitnodes-local-routing"))
	assert.Equal(t, "1450", v.Get("mtu"))
	assert.Equal(t, "10.0.0.1,10.0.0.2", v.Get("peers"))
	assert.Equal(t, "4789", v.Get("vxlan-port"))

	// optional fields left at their zero value stay out of the wire set
	assert.False(t, v.Has("controller"))
	assert.False(t, v.Has("tag"))
	assert.False(t, v.Has("vrf-vxlan"))
}

func TestZoneConfigValuesSimpleStripsKeys(t *testing.T) {
	cfg := ZoneConfig{
		Zone:                     "zone-01",
		Type:                     ZoneSimple,
		AdvertiseSubnets:         true,
		BridgeDisableMACLearning: true,
		DisableARPNDSuppression:  true,
		ExitnodesLocalRouting:    true,
		VLANProtocol:             "802.1ad",
		Bridge:                   "vmbr0",
	}

	v := cfg.Values()
	for _, key := range simpleExcluded {
		assert.False(t, v.Has(key), "simple zone must not carry %s", key)
	}

	// everything else survives the stripping
	assert.Equal(t, "zone-01", v.Get("zone"))
	assert.Equal(t, "simple", v.Get("type"))
	assert.Equal(t, "vmbr0", v.Get("bridge"))
}

func TestZoneConfigValuesNonSimpleKeepsKeys(t *testing.T) {
	cfg := ZoneConfig{
		Zone:         "ev1",
		Type:         ZoneEVPN,
		Controller:   "ctrl1",
		VLANProtocol: "802.1q",
	}

	v := cfg.Values()
	assert.Equal(t, "802.1q", v.Get("vlan-protocol"))
	assert.Equal(t, "0", v.Get("advertise-subnets"))
	assert.Equal(t, "ctrl1", v.Get("controller"))
}

func TestVnetConfigValues(t *testing.T) {
	cfg := VnetConfig{
		Vnet:      "myvnet",
		Zone:      "zone-01",
		Alias:     "lab network",
		Tag:       100,
		VLANAware: true,
	}

	v := cfg.Values()
	assert.Equal(t, "myvnet", v.Get("vnet"))
	assert.Equal(t, "zone-01", v.Get("zone"))
	assert.Equal(t, "lab network", v.Get("alias"))
	assert.Equal(t, "100", v.Get("tag"))
	assert.Equal(t, "1", v.Get("vlanaware"))
	assert.False(t, v.Has("type"))
}

func TestSubnetConfigValues(t *testing.T) {
	cfg := SubnetConfig{
		Subnet:        "10.0.0.0/24",
		Vnet:          "myvnet",
		Type:          "subnet",
		DHCPDNSServer: "10.0.0.53",
		DHCPRange: []string{
			"start-address=10.0.0.10,end-address=10.0.0.20",
			"start-address=10.0.0.100,end-address=10.0.0.200",
		},
		Gateway: "10.0.0.1",
		SNAT:    true,
	}

	v := cfg.Values()
	assert.Equal(t, "10.0.0.0/24", v.Get("subnet"))
	assert.Equal(t, "subnet", v.Get("type"))
	assert.Equal(t, "10.0.0.53", v.Get("dhcp-dns-server"))
	assert.Equal(t, "10.0.0.1", v.Get("gateway"))
	assert.Equal(t, "1", v.Get("snat"))

	// ranges go out as repeated keys
	assert.Len(t, v["dhcp-range"], 2)

	// the parent vnet is addressed via the URL, never the body
	assert.False(t, v.Has("vnet"))
}
