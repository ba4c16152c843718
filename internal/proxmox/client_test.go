package proxmox

import (
	"context"
	"testing"
	"time"

	"github.com/pvetools/pvesdnctl/internal/model"
	"github.com/pvetools/pvesdnctl/internal/proxmox/proxmoxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenClient(srv *proxmoxtest.Server) *Client {
	return NewClient(Config{
		Host:        srv.URL,
		User:        "root@pam",
		TokenID:     "ci",
		TokenSecret: "s3cr3t",
		Timeout:     5 * time.Second,
	})
}

func ticketClient(srv *proxmoxtest.Server) *Client {
	return NewClient(Config{
		Host:     srv.URL,
		User:     "root@pam",
		Password: "secret",
		Timeout:  5 * time.Second,
	})
}

func TestTokenAuthHeader(t *testing.T) {
	srv := proxmoxtest.New(t)
	client := tokenClient(srv)

	_, err := client.ListZones(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "PVEAPIToken=root@pam!ci=s3cr3t", srv.LastAuth)
	assert.Zero(t, srv.TicketLogins, "token auth must not request a ticket")
}

func TestTicketAuthLogsInOnce(t *testing.T) {
	srv := proxmoxtest.New(t)
	client := ticketClient(srv)
	ctx := context.Background()

	_, err := client.ListZones(ctx)
	require.NoError(t, err)
	_, err = client.ListVnets(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, srv.TicketLogins)
	assert.Equal(t, "test-ticket", srv.LastCookie)
}

func TestTicketAuthSendsCSRFOnMutation(t *testing.T) {
	srv := proxmoxtest.New(t)
	client := ticketClient(srv)

	err := client.CreateZone(context.Background(), model.ZoneConfig{Zone: "z1", Type: model.ZoneSimple})
	require.NoError(t, err)

	assert.Equal(t, "test-csrf", srv.LastCSRF)
}

func TestVersion(t *testing.T) {
	srv := proxmoxtest.New(t)
	client := tokenClient(srv)

	version, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.4.1", version)
}

func TestCreateZoneSendsTranslatedValues(t *testing.T) {
	srv := proxmoxtest.New(t)
	client := tokenClient(srv)

	cfg := model.ZoneConfig{
		Zone:  "vx1",
		Type:  model.ZoneVXLAN,
		Peers: "10.0.0.1",
		MTU:   1450,
	}
	err := client.CreateZone(context.Background(), cfg)
	require.NoError(t, err)

	stored := srv.Zone("vx1")
	require.NotNil(t, stored)
	assert.Equal(t, "vxlan", stored.Get("type"))
	assert.Equal(t, "10.0.0.1", stored.Get("peers"))
	assert.Equal(t, "1450", stored.Get("mtu"))
	assert.Equal(t, "0", stored.Get("advertise-subnets"))
}

func TestListZones(t *testing.T) {
	srv := proxmoxtest.New(t)
	srv.AddZone("zone-01", "simple")
	srv.AddZone("zone-02", "vlan")
	client := tokenClient(srv)

	zones, err := client.ListZones(context.Background())
	require.NoError(t, err)
	assert.Len(t, zones, 2)
}

func TestSubnetPathEscaping(t *testing.T) {
	srv := proxmoxtest.New(t)
	srv.AddVnet("myvnet", "zone-01")
	srv.AddSubnet("myvnet", "10.0.0.0/24")
	client := tokenClient(srv)
	ctx := context.Background()

	subnets, err := client.ListSubnets(ctx, "myvnet")
	require.NoError(t, err)
	require.Len(t, subnets, 1)

	// the CIDR slash travels escaped inside one path segment
	err = client.DeleteSubnet(ctx, "myvnet", "10.0.0.0/24")
	require.NoError(t, err)

	subnets, err = client.ListSubnets(ctx, "myvnet")
	require.NoError(t, err)
	assert.Empty(t, subnets)
}

func TestListErrorCarriesStatus(t *testing.T) {
	srv := proxmoxtest.New(t)
	srv.FailZoneList = true
	client := tokenClient(srv)

	_, err := client.ListZones(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHostSchemeDefaultsToHTTPS(t *testing.T) {
	client := NewClient(Config{Host: "pve.example.com:8006"})
	assert.Equal(t, "https://pve.example.com:8006/api2/json", client.baseURL)
}
