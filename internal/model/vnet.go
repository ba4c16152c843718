package model

import "net/url"

// Vnet is a vnet entry as returned by the cluster SDN listing.
type Vnet struct {
	Vnet  string `json:"vnet"`
	Zone  string `json:"zone"`
	Alias string `json:"alias,omitempty"`
	Tag   int    `json:"tag,omitempty"`
}

// VnetConfig is the desired state of an SDN vnet.
type VnetConfig struct {
	Vnet      string // vnet identifier
	Zone      string // parent zone, required
	Alias     string
	Tag       int
	Type      string
	VLANAware bool
}

// Values translates the desired state into the cluster API parameter set.
func (c VnetConfig) Values() url.Values {
	v := url.Values{}
	v.Set("vnet", c.Vnet)
	v.Set("zone", c.Zone)
	setString(v, "alias", c.Alias)
	setInt(v, "tag", c.Tag)
	setString(v, "type", c.Type)
	v.Set("vlanaware", boolParam(c.VLANAware))
	return v
}
