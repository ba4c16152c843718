package model

import "net/url"

// Subnet is a subnet entry as returned by the vnet-scoped SDN listing.
// The cluster may canonicalize the stored identifier, so both Subnet and
// CIDR can carry the network in CIDR form.
type Subnet struct {
	Subnet  string `json:"subnet"`
	Vnet    string `json:"vnet"`
	CIDR    string `json:"cidr,omitempty"`
	Type    string `json:"type,omitempty"`
	Gateway string `json:"gateway,omitempty"`
}

// SubnetConfig is the desired state of an SDN subnet.
type SubnetConfig struct {
	Subnet        string // subnet in CIDR form, e.g. "10.0.0.0/24"
	Vnet          string // parent vnet, required; addressed via the URL, never sent in the body
	Type          string
	DHCPDNSServer string
	DHCPRange     []string // entries like "start-address=10.0.0.10,end-address=10.0.0.20"
	DNSZonePrefix string
	Gateway       string
	SNAT          bool
}

// Values translates the desired state into the cluster API parameter set.
func (c SubnetConfig) Values() url.Values {
	v := url.Values{}
	v.Set("subnet", c.Subnet)
	setString(v, "type", c.Type)
	setString(v, "dhcp-dns-server", c.DHCPDNSServer)
	for _, r := range c.DHCPRange {
		v.Add("dhcp-range", r)
	}
	setString(v, "dnszoneprefix", c.DNSZonePrefix)
	setString(v, "gateway", c.Gateway)
	v.Set("snat", boolParam(c.SNAT))
	return v
}
