package model

import "net/url"

// ZoneType identifies the technology backing an SDN zone.
type ZoneType string

const (
	ZoneEVPN   ZoneType = "evpn"
	ZoneFaucet ZoneType = "faucet"
	ZoneQinQ   ZoneType = "qinq"
	ZoneSimple ZoneType = "simple"
	ZoneVLAN   ZoneType = "vlan"
	ZoneVXLAN  ZoneType = "vxlan"
)

// ZoneTypes lists every valid zone type.
var ZoneTypes = []ZoneType{ZoneEVPN, ZoneFaucet, ZoneQinQ, ZoneSimple, ZoneVLAN, ZoneVXLAN}

// Valid reports whether t is a known zone type.
func (t ZoneType) Valid() bool {
	for _, zt := range ZoneTypes {
		if t == zt {
			return true
		}
	}
	return false
}

// VLANProtocols lists the accepted vlan-protocol values.
var VLANProtocols = []string{"802.1q", "802.1ad"}

// ValidVLANProtocol reports whether p is an accepted vlan-protocol value.
func ValidVLANProtocol(p string) bool {
	return p == "802.1q" || p == "802.1ad"
}

// Zone is a zone entry as returned by the cluster SDN listing.
type Zone struct {
	Zone string `json:"zone"`
	Type string `json:"type"`
}

// ZoneConfig is the desired state of an SDN zone.
type ZoneConfig struct {
	Zone                     string   // zone identifier
	Type                     ZoneType // required
	AdvertiseSubnets         bool
	Bridge                   string
	BridgeDisableMACLearning bool
	Controller               string
	DHCP                     string
	Digest                   string
	DisableARPNDSuppression  bool
	DNS                      string
	DNSZone                  string
	DPID                     int
	Exitnodes                string // comma-separated cluster node names
	ExitnodesLocalRouting    bool
	ExitnodesPrimary         string
	IPAM                     string
	MAC                      string
	MTU                      int
	Nodes                    string // comma-separated cluster node names
	Peers                    string
	ReverseDNS               string
	RTImport                 string
	Tag                      int
	VLANProtocol             string // 802.1q or 802.1ad
	VRFVXLAN                 int
	VXLANPort                int
}

// Keys not applicable to simple zones.
var simpleExcluded = []string{
	"vlan-protocol",
	"advertise-subnets",
	"exitnodes-local-routing",
	"bridge-disable-mac-learning",
	"disable-arp-nd-suppression",
}

// Values translates the desired state into the flat parameter set the
// cluster API expects: hyphenated keys, booleans as 1/0, unset optional
// fields omitted. Simple zones carry none of the keys in simpleExcluded.
func (c ZoneConfig) Values() url.Values {
	v := url.Values{}
	v.Set("zone", c.Zone)
	v.Set("type", string(c.Type))
	v.Set("advertise-subnets", boolParam(c.AdvertiseSubnets))
	setString(v, "bridge", c.Bridge)
	v.Set("bridge-disable-mac-learning", boolParam(c.BridgeDisableMACLearning))
	setString(v, "controller", c.Controller)
	setString(v, "dhcp", c.DHCP)
	setString(v, "digest", c.Digest)
	v.Set("disable-arp-nd-suppression", boolParam(c.DisableARPNDSuppression))
	setString(v, "dns", c.DNS)
	setString(v, "dnszone", c.DNSZone)
	setInt(v, "dp-id", c.DPID)
	setString(v, "exitnodes", c.Exitnodes)
	v.Set("exitnodes-local-routing", boolParam(c.ExitnodesLocalRouting))
	setString(v, "exitnodes-primary", c.ExitnodesPrimary)
	setString(v, "ipam", c.IPAM)
	setString(v, "mac", c.MAC)
	setInt(v, "mtu", c.MTU)
	setString(v, "nodes", c.Nodes)
	setString(v, "peers", c.Peers)
	setString(v, "reversedns", c.ReverseDNS)
	setString(v, "rt-import", c.RTImport)
	setInt(v, "tag", c.Tag)
	setString(v, "vlan-protocol", c.VLANProtocol)
	setInt(v, "vrf-vxlan", c.VRFVXLAN)
	setInt(v, "vxlan-port", c.VXLANPort)

	if c.Type == ZoneSimple {
		for _, key := range simpleExcluded {
			v.Del(key)
		}
	}
	return v
}
