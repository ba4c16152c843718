package proxmox

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pvetools/pvesdnctl/internal/model"
)

// ListZones returns every SDN zone on the cluster.
func (c *Client) ListZones(ctx context.Context) ([]model.Zone, error) {
	var zones []model.Zone
	if err := c.do(ctx, http.MethodGet, "/cluster/sdn/zones", nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// CreateZone creates a zone from the translated desired state.
func (c *Client) CreateZone(ctx context.Context, cfg model.ZoneConfig) error {
	return c.do(ctx, http.MethodPost, "/cluster/sdn/zones", cfg.Values(), nil)
}

// DeleteZone removes the zone with the given identifier.
func (c *Client) DeleteZone(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cluster/sdn/zones/"+url.PathEscape(id), nil, nil)
}

// ListVnets returns every SDN vnet on the cluster.
func (c *Client) ListVnets(ctx context.Context) ([]model.Vnet, error) {
	var vnets []model.Vnet
	if err := c.do(ctx, http.MethodGet, "/cluster/sdn/vnets", nil, &vnets); err != nil {
		return nil, err
	}
	return vnets, nil
}

// CreateVnet creates a vnet from the translated desired state.
func (c *Client) CreateVnet(ctx context.Context, cfg model.VnetConfig) error {
	return c.do(ctx, http.MethodPost, "/cluster/sdn/vnets", cfg.Values(), nil)
}

// DeleteVnet removes the vnet with the given identifier.
func (c *Client) DeleteVnet(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cluster/sdn/vnets/"+url.PathEscape(id), nil, nil)
}

// ListSubnets returns the subnets of one vnet.
func (c *Client) ListSubnets(ctx context.Context, vnet string) ([]model.Subnet, error) {
	var subnets []model.Subnet
	path := "/cluster/sdn/vnets/" + url.PathEscape(vnet) + "/subnets"
	if err := c.do(ctx, http.MethodGet, path, nil, &subnets); err != nil {
		return nil, err
	}
	return subnets, nil
}

// CreateSubnet creates a subnet under the config's parent vnet.
func (c *Client) CreateSubnet(ctx context.Context, cfg model.SubnetConfig) error {
	path := "/cluster/sdn/vnets/" + url.PathEscape(cfg.Vnet) + "/subnets"
	return c.do(ctx, http.MethodPost, path, cfg.Values(), nil)
}

// DeleteSubnet removes a subnet from its vnet. Subnet identifiers are
// CIDRs, so the id segment carries an escaped slash.
func (c *Client) DeleteSubnet(ctx context.Context, vnet, id string) error {
	path := "/cluster/sdn/vnets/" + url.PathEscape(vnet) + "/subnets/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
