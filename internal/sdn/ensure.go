// Package sdn converges cluster SDN resources toward a desired state.
//
// Every operation issues at most one mutating call. Existence is decided
// by listing the resource's collection and scanning for its identifier;
// deletes are guarded by a read of the next-level-down collection so a
// resource is never removed while children still reference it.
package sdn

import (
	"context"
	"errors"
	"fmt"

	"github.com/pvetools/pvesdnctl/internal/history"
	"github.com/pvetools/pvesdnctl/internal/log"
	"github.com/pvetools/pvesdnctl/internal/model"
)

// ErrNotEmpty marks a delete refused because children still reference
// the resource.
var ErrNotEmpty = errors.New("resource is not empty")

// Result reports the outcome of one apply or delete invocation.
type Result struct {
	Changed bool   `json:"changed"`
	Msg     string `json:"msg"`
}

// API is the slice of the cluster client the manager needs.
type API interface {
	ListZones(ctx context.Context) ([]model.Zone, error)
	CreateZone(ctx context.Context, cfg model.ZoneConfig) error
	DeleteZone(ctx context.Context, id string) error
	ListVnets(ctx context.Context) ([]model.Vnet, error)
	CreateVnet(ctx context.Context, cfg model.VnetConfig) error
	DeleteVnet(ctx context.Context, id string) error
	ListSubnets(ctx context.Context, vnet string) ([]model.Subnet, error)
	CreateSubnet(ctx context.Context, cfg model.SubnetConfig) error
	DeleteSubnet(ctx context.Context, vnet, id string) error
}

// Recorder persists invocation records. Recording is observational: a
// recorder never influences an apply or delete decision, and recording
// failures are logged rather than surfaced.
type Recorder interface {
	Record(rec history.Record) error
}

// Manager applies desired state against one cluster. In check mode all
// reads still happen but mutations are skipped and the result reports
// what would have changed.
//
// Apply on a resource that already exists is a no-op: attributes of
// existing resources are not reconciled.
type Manager struct {
	api   API
	check bool
	rec   Recorder
}

// NewManager returns a manager driving the given cluster API. rec may be
// nil to disable invocation history.
func NewManager(api API, check bool, rec Recorder) *Manager {
	return &Manager{api: api, check: check, rec: rec}
}

// ApplyZone converges a zone toward the desired configuration.
func (m *Manager) ApplyZone(ctx context.Context, cfg model.ZoneConfig) (Result, error) {
	exists, err := m.zoneExists(ctx, cfg.Zone)
	if err != nil {
		return Result{}, err
	}

	var res Result
	switch {
	case exists:
		res = Result{Msg: fmt.Sprintf("zone %s already exists", cfg.Zone)}
	case m.check:
		res = Result{Changed: true, Msg: fmt.Sprintf("zone %s would be created", cfg.Zone)}
	default:
		if err := m.api.CreateZone(ctx, cfg); err != nil {
			return Result{}, fmt.Errorf("creating zone %s: %w", cfg.Zone, err)
		}
		log.Info("Zone created", "zone", cfg.Zone, "type", string(cfg.Type))
		res = Result{Changed: true, Msg: fmt.Sprintf("zone %s created", cfg.Zone)}
	}

	m.record("zone", cfg.Zone, "apply", res)
	return res, nil
}

// DeleteZone removes a zone once no vnet references it.
func (m *Manager) DeleteZone(ctx context.Context, id string) (Result, error) {
	exists, err := m.zoneExists(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		res := Result{Msg: fmt.Sprintf("zone %s doesn't exist", id)}
		m.record("zone", id, "delete", res)
		return res, nil
	}

	empty, err := m.zoneEmpty(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !empty {
		return Result{}, fmt.Errorf("can't delete zone %s with vnets attached, remove the vnets first: %w", id, ErrNotEmpty)
	}

	var res Result
	if m.check {
		res = Result{Changed: true, Msg: fmt.Sprintf("zone %s would be deleted", id)}
	} else {
		if err := m.api.DeleteZone(ctx, id); err != nil {
			return Result{}, fmt.Errorf("deleting zone %s: %w", id, err)
		}
		log.Info("Zone deleted", "zone", id)
		res = Result{Changed: true, Msg: fmt.Sprintf("zone %s deleted", id)}
	}

	m.record("zone", id, "delete", res)
	return res, nil
}

// ApplyVnet converges a vnet toward the desired configuration.
func (m *Manager) ApplyVnet(ctx context.Context, cfg model.VnetConfig) (Result, error) {
	exists, err := m.vnetExists(ctx, cfg.Vnet)
	if err != nil {
		return Result{}, err
	}

	var res Result
	switch {
	case exists:
		res = Result{Msg: fmt.Sprintf("vnet %s already exists", cfg.Vnet)}
	case m.check:
		res = Result{Changed: true, Msg: fmt.Sprintf("vnet %s would be created", cfg.Vnet)}
	default:
		if err := m.api.CreateVnet(ctx, cfg); err != nil {
			return Result{}, fmt.Errorf("creating vnet %s: %w", cfg.Vnet, err)
		}
		log.Info("Vnet created", "vnet", cfg.Vnet, "zone", cfg.Zone)
		res = Result{Changed: true, Msg: fmt.Sprintf("vnet %s created", cfg.Vnet)}
	}

	m.record("vnet", cfg.Vnet, "apply", res)
	return res, nil
}

// DeleteVnet removes a vnet once no subnet references it.
func (m *Manager) DeleteVnet(ctx context.Context, id string) (Result, error) {
	exists, err := m.vnetExists(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		res := Result{Msg: fmt.Sprintf("vnet %s doesn't exist", id)}
		m.record("vnet", id, "delete", res)
		return res, nil
	}

	empty, err := m.vnetEmpty(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !empty {
		return Result{}, fmt.Errorf("can't delete vnet %s with subnets attached, remove the subnets first: %w", id, ErrNotEmpty)
	}

	var res Result
	if m.check {
		res = Result{Changed: true, Msg: fmt.Sprintf("vnet %s would be deleted", id)}
	} else {
		if err := m.api.DeleteVnet(ctx, id); err != nil {
			return Result{}, fmt.Errorf("deleting vnet %s: %w", id, err)
		}
		log.Info("Vnet deleted", "vnet", id)
		res = Result{Changed: true, Msg: fmt.Sprintf("vnet %s deleted", id)}
	}

	m.record("vnet", id, "delete", res)
	return res, nil
}

// ApplySubnet converges a subnet toward the desired configuration.
func (m *Manager) ApplySubnet(ctx context.Context, cfg model.SubnetConfig) (Result, error) {
	exists, err := m.subnetExists(ctx, cfg.Vnet, cfg.Subnet)
	if err != nil {
		return Result{}, err
	}

	var res Result
	switch {
	case exists:
		res = Result{Msg: fmt.Sprintf("subnet %s already exists", cfg.Subnet)}
	case m.check:
		res = Result{Changed: true, Msg: fmt.Sprintf("subnet %s would be created", cfg.Subnet)}
	default:
		if err := m.api.CreateSubnet(ctx, cfg); err != nil {
			return Result{}, fmt.Errorf("creating subnet %s: %w", cfg.Subnet, err)
		}
		log.Info("Subnet created", "subnet", cfg.Subnet, "vnet", cfg.Vnet)
		res = Result{Changed: true, Msg: fmt.Sprintf("subnet %s created", cfg.Subnet)}
	}

	m.record("subnet", cfg.Subnet, "apply", res)
	return res, nil
}

// DeleteSubnet removes a subnet from its vnet. Subnets are leaves, so
// no emptiness guard applies.
func (m *Manager) DeleteSubnet(ctx context.Context, vnet, id string) (Result, error) {
	exists, err := m.subnetExists(ctx, vnet, id)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		res := Result{Msg: fmt.Sprintf("subnet %s doesn't exist", id)}
		m.record("subnet", id, "delete", res)
		return res, nil
	}

	var res Result
	if m.check {
		res = Result{Changed: true, Msg: fmt.Sprintf("subnet %s would be deleted", id)}
	} else {
		if err := m.api.DeleteSubnet(ctx, vnet, id); err != nil {
			return Result{}, fmt.Errorf("deleting subnet %s: %w", id, err)
		}
		log.Info("Subnet deleted", "subnet", id, "vnet", vnet)
		res = Result{Changed: true, Msg: fmt.Sprintf("subnet %s deleted", id)}
	}

	m.record("subnet", id, "delete", res)
	return res, nil
}

// zoneExists reports whether a zone with the given identifier exists.
// A listing failure is fatal, never treated as absence.
func (m *Manager) zoneExists(ctx context.Context, id string) (bool, error) {
	zones, err := m.api.ListZones(ctx)
	if err != nil {
		return false, fmt.Errorf("checking zone %s: %w", id, err)
	}
	for _, z := range zones {
		if z.Zone == id {
			return true, nil
		}
	}
	return false, nil
}

// zoneEmpty reports whether no vnet references the zone.
func (m *Manager) zoneEmpty(ctx context.Context, id string) (bool, error) {
	vnets, err := m.api.ListVnets(ctx)
	if err != nil {
		return false, fmt.Errorf("checking vnets of zone %s: %w", id, err)
	}
	for _, v := range vnets {
		if v.Zone == id {
			return false, nil
		}
	}
	return true, nil
}

// vnetExists reports whether a vnet with the given identifier exists.
func (m *Manager) vnetExists(ctx context.Context, id string) (bool, error) {
	vnets, err := m.api.ListVnets(ctx)
	if err != nil {
		return false, fmt.Errorf("checking vnet %s: %w", id, err)
	}
	for _, v := range vnets {
		if v.Vnet == id {
			return true, nil
		}
	}
	return false, nil
}

// vnetEmpty reports whether no subnet references the vnet.
func (m *Manager) vnetEmpty(ctx context.Context, id string) (bool, error) {
	subnets, err := m.api.ListSubnets(ctx, id)
	if err != nil {
		return false, fmt.Errorf("checking subnets of vnet %s: %w", id, err)
	}
	for _, s := range subnets {
		if s.Vnet == id {
			return false, nil
		}
	}
	return true, nil
}

// subnetExists reports whether the vnet holds a subnet with the given
// identifier. The cluster may canonicalize stored subnet identifiers,
// so the CIDR field counts as a match too.
func (m *Manager) subnetExists(ctx context.Context, vnet, id string) (bool, error) {
	subnets, err := m.api.ListSubnets(ctx, vnet)
	if err != nil {
		return false, fmt.Errorf("checking subnet %s: %w", id, err)
	}
	for _, s := range subnets {
		if s.Subnet == id || s.CIDR == id {
			return true, nil
		}
	}
	return false, nil
}

// record stores one completed invocation in the history, when enabled.
func (m *Manager) record(kind, id, action string, res Result) {
	if m.rec == nil {
		return
	}
	err := m.rec.Record(history.Record{
		Kind:       kind,
		ResourceID: id,
		Action:     action,
		Check:      m.check,
		Changed:    res.Changed,
		Msg:        res.Msg,
	})
	if err != nil {
		log.Warn("Failed to record invocation history", "error", err)
	}
}
