// Package mcp exposes the SDN operations as MCP tools so assistants can
// drive the same apply/delete/list surface the CLI offers.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/paularlott/mcp"
	"github.com/pvetools/pvesdnctl/internal/log"
	"github.com/pvetools/pvesdnctl/internal/model"
	"github.com/pvetools/pvesdnctl/internal/proxmox"
	"github.com/pvetools/pvesdnctl/internal/sdn"
)

// Server wraps the MCP server with the cluster client. Every tool
// invocation builds a fresh manager so the check parameter is scoped
// to that call.
type Server struct {
	mcpServer   *mcp.Server
	client      *proxmox.Client
	rec         sdn.Recorder
	bearerToken string
}

// NewServer creates an MCP server driving the given cluster. rec may be
// nil to disable invocation history.
func NewServer(client *proxmox.Client, rec sdn.Recorder, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("pvesdnctl", "1.0.0"),
		client:      client,
		rec:         rec,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

// manager builds the per-call manager, honoring the common check parameter.
func (s *Server) manager(req *mcp.ToolRequest) (*sdn.Manager, error) {
	check, err := boolParam(req, "check")
	if err != nil {
		return nil, err
	}
	return sdn.NewManager(s.client, check, s.rec), nil
}

func (s *Server) registerTools() {
	// Zone tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("zone_apply", "Ensure an SDN zone exists. Creates the zone when missing; an existing zone is left untouched.",
			mcp.String("zone", "Zone identifier", mcp.Required()),
			mcp.String("type", "Zone type: evpn, faucet, qinq, simple, vlan or vxlan", mcp.Required()),
			mcp.String("advertise_subnets", "Advertise EVPN subnets (true/false)"),
			mcp.String("bridge", "Bridge name"),
			mcp.String("bridge_disable_mac_learning", "Disable auto MAC learning on the bridge (true/false)"),
			mcp.String("controller", "EVPN controller address"),
			mcp.String("dhcp", "DHCP backend name"),
			mcp.String("disable_arp_nd_suppression", "Disable IPv4 ARP and IPv6 neighbor discovery suppression (true/false)"),
			mcp.String("dns", "DNS API server"),
			mcp.String("dnszone", "DNS domain name"),
			mcp.String("dp_id", "Faucet dataplane id (number)"),
			mcp.String("exitnodes", "Comma-separated EVPN exit node names"),
			mcp.String("exitnodes_local_routing", "Allow exit nodes to connect to EVPN guests (true/false)"),
			mcp.String("exitnodes_primary", "Primary exit node"),
			mcp.String("ipam", "IPAM backend name"),
			mcp.String("mac", "Anycast logical router MAC address"),
			mcp.String("mtu", "MTU (number)"),
			mcp.String("nodes", "Comma-separated cluster node names"),
			mcp.String("peers", "Comma-separated VXLAN peer addresses"),
			mcp.String("reversedns", "Reverse DNS API server"),
			mcp.String("rt_import", "EVPN route targets to import"),
			mcp.String("tag", "Service VLAN tag (number)"),
			mcp.String("vlan_protocol", "Service VLAN protocol: 802.1q or 802.1ad"),
			mcp.String("vrf_vxlan", "L3 VNI (number)"),
			mcp.String("vxlan_port", "VXLAN tunnel UDP port (number)"),
			mcp.String("check", "Report what would change without mutating (true/false)"),
		),
		s.handleZoneApply,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("zone_delete", "Ensure an SDN zone is absent. Fails when vnets still reference the zone.",
			mcp.String("zone", "Zone identifier", mcp.Required()),
			mcp.String("check", "Report what would change without mutating (true/false)"),
		),
		s.handleZoneDelete,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("zone_list", "List all SDN zones on the cluster"),
		s.handleZoneList,
	)

	// Vnet tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("vnet_apply", "Ensure an SDN vnet exists inside a zone. Creates the vnet when missing; an existing vnet is left untouched.",
			mcp.String("vnet", "Vnet identifier", mcp.Required()),
			mcp.String("zone", "Parent zone identifier", mcp.Required()),
			mcp.String("alias", "Vnet alias"),
			mcp.String("tag", "VLAN or VXLAN tag (number)"),
			mcp.String("type", "Vnet type"),
			mcp.String("vlanaware", "Allow VLAN tags inside the vnet (true/false)"),
			mcp.String("check", "Report what would change without mutating (true/false)"),
		),
		s.handleVnetApply,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("vnet_delete", "Ensure an SDN vnet is absent. Fails when subnets still reference the vnet.",
			mcp.String("vnet", "Vnet identifier", mcp.Required()),
			mcp.String("check", "Report what would change without mutating (true/false)"),
		),
		s.handleVnetDelete,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("vnet_list", "List all SDN vnets on the cluster"),
		s.handleVnetList,
	)

	// Subnet tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("subnet_apply", "Ensure a subnet exists inside a vnet. Creates the subnet when missing; an existing subnet is left untouched.",
			mcp.String("subnet", "Subnet in CIDR form (e.g. 10.0.0.0/24)", mcp.Required()),
			mcp.String("vnet", "Parent vnet identifier", mcp.Required()),
			mcp.String("type", "Subnet type (default: subnet)"),
			mcp.String("dhcp_dns_server", "IP address of the DNS server for DHCP leases"),
			mcp.StringArray("dhcp_range", "DHCP ranges like start-address=10.0.0.10,end-address=10.0.0.20"),
			mcp.String("dnszoneprefix", "DNS zone prefix"),
			mcp.String("gateway", "Gateway address"),
			mcp.String("snat", "Enable source NAT (true/false)"),
			mcp.String("check", "Report what would change without mutating (true/false)"),
		),
		s.handleSubnetApply,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("subnet_delete", "Ensure a subnet is absent from a vnet.",
			mcp.String("subnet", "Subnet in CIDR form", mcp.Required()),
			mcp.String("vnet", "Parent vnet identifier", mcp.Required()),
			mcp.String("check", "Report what would change without mutating (true/false)"),
		),
		s.handleSubnetDelete,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("subnet_list", "List the subnets of one vnet",
			mcp.String("vnet", "Vnet identifier", mcp.Required()),
		),
		s.handleSubnetList,
	)

	// Cluster tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("sdn_status", "Report the cluster API version and SDN resource counts"),
		s.handleStatus,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token
// authentication.
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		if strings.TrimPrefix(auth, "Bearer ") != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

// GetHTTPHandler returns the HTTP handler for the MCP server.
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information.
func (s *Server) LogStartup() {
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}

// Zone tool handlers

func (s *Server) handleZoneApply(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	zone, err := req.String("zone")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("zone is required: " + err.Error())
	}
	zoneType, err := req.String("type")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("type is required: " + err.Error())
	}
	if !model.ZoneType(zoneType).Valid() {
		return nil, mcp.NewToolErrorInvalidParams("unknown zone type: " + zoneType)
	}

	cfg := model.ZoneConfig{
		Zone:             zone,
		Type:             model.ZoneType(zoneType),
		Bridge:           req.StringOr("bridge", ""),
		Controller:       req.StringOr("controller", ""),
		DHCP:             req.StringOr("dhcp", ""),
		DNS:              req.StringOr("dns", ""),
		DNSZone:          req.StringOr("dnszone", ""),
		Exitnodes:        req.StringOr("exitnodes", ""),
		ExitnodesPrimary: req.StringOr("exitnodes_primary", ""),
		IPAM:             req.StringOr("ipam", ""),
		MAC:              req.StringOr("mac", ""),
		Nodes:            req.StringOr("nodes", ""),
		Peers:            req.StringOr("peers", ""),
		ReverseDNS:       req.StringOr("reversedns", ""),
		RTImport:         req.StringOr("rt_import", ""),
		VLANProtocol:     req.StringOr("vlan_protocol", ""),
	}
	if cfg.VLANProtocol != "" && !model.ValidVLANProtocol(cfg.VLANProtocol) {
		return nil, mcp.NewToolErrorInvalidParams("unknown vlan protocol: " + cfg.VLANProtocol)
	}

	p := newParams(req)
	cfg.AdvertiseSubnets = p.boolOf("advertise_subnets")
	cfg.BridgeDisableMACLearning = p.boolOf("bridge_disable_mac_learning")
	cfg.DisableARPNDSuppression = p.boolOf("disable_arp_nd_suppression")
	cfg.ExitnodesLocalRouting = p.boolOf("exitnodes_local_routing")
	cfg.DPID = p.intOf("dp_id")
	cfg.MTU = p.intOf("mtu")
	cfg.Tag = p.intOf("tag")
	cfg.VRFVXLAN = p.intOf("vrf_vxlan")
	cfg.VXLANPort = p.intOf("vxlan_port")
	if p.err != nil {
		return nil, p.err
	}

	m, err := s.manager(req)
	if err != nil {
		return nil, err
	}
	res, err := m.ApplyZone(ctx, cfg)
	if err != nil {
		log.Error("MCP zone apply failed", "error", err, "zone", zone)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	return resultResponse(res), nil
}

func (s *Server) handleZoneDelete(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	zone, err := req.String("zone")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("zone is required: " + err.Error())
	}

	m, err := s.manager(req)
	if err != nil {
		return nil, err
	}
	res, err := m.DeleteZone(ctx, zone)
	if err != nil {
		log.Error("MCP zone delete failed", "error", err, "zone", zone)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	return resultResponse(res), nil
}

func (s *Server) handleZoneList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	zones, err := s.client.ListZones(ctx)
	if err != nil {
		log.Error("MCP zone list failed", "error", err)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	if len(zones) == 0 {
		return mcp.NewToolResponseText("No zones found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d zones:\n\n", len(zones)))
	for _, z := range zones {
		result.WriteString(fmt.Sprintf("- %s (type: %s)\n", z.Zone, z.Type))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

// Vnet tool handlers

func (s *Server) handleVnetApply(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vnet, err := req.String("vnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("vnet is required: " + err.Error())
	}
	zone, err := req.String("zone")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("zone is required: " + err.Error())
	}

	cfg := model.VnetConfig{
		Vnet:  vnet,
		Zone:  zone,
		Alias: req.StringOr("alias", ""),
		Type:  req.StringOr("type", ""),
	}

	p := newParams(req)
	cfg.Tag = p.intOf("tag")
	cfg.VLANAware = p.boolOf("vlanaware")
	if p.err != nil {
		return nil, p.err
	}

	m, err := s.manager(req)
	if err != nil {
		return nil, err
	}
	res, err := m.ApplyVnet(ctx, cfg)
	if err != nil {
		log.Error("MCP vnet apply failed", "error", err, "vnet", vnet)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	return resultResponse(res), nil
}

func (s *Server) handleVnetDelete(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vnet, err := req.String("vnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("vnet is required: " + err.Error())
	}

	m, err := s.manager(req)
	if err != nil {
		return nil, err
	}
	res, err := m.DeleteVnet(ctx, vnet)
	if err != nil {
		log.Error("MCP vnet delete failed", "error", err, "vnet", vnet)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	return resultResponse(res), nil
}

func (s *Server) handleVnetList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vnets, err := s.client.ListVnets(ctx)
	if err != nil {
		log.Error("MCP vnet list failed", "error", err)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	if len(vnets) == 0 {
		return mcp.NewToolResponseText("No vnets found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d vnets:\n\n", len(vnets)))
	for _, v := range vnets {
		line := fmt.Sprintf("- %s (zone: %s", v.Vnet, v.Zone)
		if v.Alias != "" {
			line += ", alias: " + v.Alias
		}
		if v.Tag != 0 {
			line += fmt.Sprintf(", tag: %d", v.Tag)
		}
		result.WriteString(line + ")\n")
	}
	return mcp.NewToolResponseText(result.String()), nil
}

// Subnet tool handlers

func (s *Server) handleSubnetApply(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	subnet, err := req.String("subnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("subnet is required: " + err.Error())
	}
	vnet, err := req.String("vnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("vnet is required: " + err.Error())
	}

	ranges, _ := req.StringSlice("dhcp_range")

	cfg := model.SubnetConfig{
		Subnet:        subnet,
		Vnet:          vnet,
		Type:          req.StringOr("type", "subnet"),
		DHCPDNSServer: req.StringOr("dhcp_dns_server", ""),
		DHCPRange:     ranges,
		DNSZonePrefix: req.StringOr("dnszoneprefix", ""),
		Gateway:       req.StringOr("gateway", ""),
	}

	p := newParams(req)
	cfg.SNAT = p.boolOf("snat")
	if p.err != nil {
		return nil, p.err
	}

	m, err := s.manager(req)
	if err != nil {
		return nil, err
	}
	res, err := m.ApplySubnet(ctx, cfg)
	if err != nil {
		log.Error("MCP subnet apply failed", "error", err, "subnet", subnet)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	return resultResponse(res), nil
}

func (s *Server) handleSubnetDelete(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	subnet, err := req.String("subnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("subnet is required: " + err.Error())
	}
	vnet, err := req.String("vnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("vnet is required: " + err.Error())
	}

	m, err := s.manager(req)
	if err != nil {
		return nil, err
	}
	res, err := m.DeleteSubnet(ctx, vnet, subnet)
	if err != nil {
		log.Error("MCP subnet delete failed", "error", err, "subnet", subnet)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	return resultResponse(res), nil
}

func (s *Server) handleSubnetList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	vnet, err := req.String("vnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("vnet is required: " + err.Error())
	}

	subnets, err := s.client.ListSubnets(ctx, vnet)
	if err != nil {
		log.Error("MCP subnet list failed", "error", err, "vnet", vnet)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	if len(subnets) == 0 {
		return mcp.NewToolResponseText(fmt.Sprintf("No subnets found in vnet %s", vnet)), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d subnets in vnet %s:\n\n", len(subnets), vnet))
	for _, sn := range subnets {
		id := sn.CIDR
		if id == "" {
			id = sn.Subnet
		}
		line := "- " + id
		if sn.Gateway != "" {
			line += " (gateway: " + sn.Gateway + ")"
		}
		result.WriteString(line + "\n")
	}
	return mcp.NewToolResponseText(result.String()), nil
}

// Cluster tool handlers

func (s *Server) handleStatus(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	version, err := s.client.Version(ctx)
	if err != nil {
		log.Error("MCP status failed", "error", err)
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	zones, err := s.client.ListZones(ctx)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	vnets, err := s.client.ListVnets(ctx)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}

	return mcp.NewToolResponseText(fmt.Sprintf(
		"Cluster API version %s\nZones: %d\nVnets: %d", version, len(zones), len(vnets))), nil
}

// Parameter helpers. All tool parameters are strings; booleans and
// numbers arrive as "true"/"false" and numeric strings.

func boolParam(req *mcp.ToolRequest, name string) (bool, error) {
	raw := req.StringOr(name, "")
	switch strings.ToLower(raw) {
	case "", "false", "0", "no":
		return false, nil
	case "true", "1", "yes":
		return true, nil
	}
	return false, mcp.NewToolErrorInvalidParams(fmt.Sprintf("%s must be true or false, got %q", name, raw))
}

// params collects typed optional parameters, keeping the first error.
type params struct {
	req *mcp.ToolRequest
	err error
}

func newParams(req *mcp.ToolRequest) *params {
	return &params{req: req}
}

func (p *params) boolOf(name string) bool {
	v, err := boolParam(p.req, name)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *params) intOf(name string) int {
	raw := p.req.StringOr(name, "")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		if p.err == nil {
			p.err = mcp.NewToolErrorInvalidParams(fmt.Sprintf("%s must be a number, got %q", name, raw))
		}
		return 0
	}
	return n
}

func resultResponse(res sdn.Result) *mcp.ToolResponse {
	return mcp.NewToolResponseText(fmt.Sprintf("%s (changed: %t)", res.Msg, res.Changed))
}
