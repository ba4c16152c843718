// Package proxmoxtest provides an in-memory stand-in for the cluster SDN
// API, used by tests across the module. It speaks the real wire contract:
// the data envelope, url-encoded create bodies, the ticket endpoint and
// escaped subnet identifiers.
package proxmoxtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Server is a fake Proxmox VE cluster holding SDN state in memory.
// Mutating handlers count calls and keep the raw form values they
// received so tests can assert on exactly what reached the API.
type Server struct {
	URL string

	mu      sync.Mutex
	zones   map[string]url.Values
	vnets   map[string]url.Values
	subnets map[string]map[string]url.Values // vnet -> subnet id -> values

	CreateCalls  int
	DeleteCalls  int
	TicketLogins int

	FailZoneList   bool
	FailVnetList   bool
	FailSubnetList bool
	FailCreate     bool
	FailDelete     bool

	LastAuth   string     // last Authorization header seen
	LastCookie string     // last PVEAuthCookie value seen
	LastCSRF   string     // last CSRFPreventionToken header seen
	LastCreate url.Values // body of the last create request

	httpServer *httptest.Server
}

// New starts a fake cluster and registers its shutdown with t.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		zones:   make(map[string]url.Values),
		vnets:   make(map[string]url.Values),
		subnets: make(map[string]map[string]url.Values),
	}
	s.httpServer = httptest.NewServer(s.router())
	s.URL = s.httpServer.URL
	t.Cleanup(s.httpServer.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recordAuth)

	r.Post("/api2/json/access/ticket", s.handleTicket)
	r.Get("/api2/json/version", s.handleVersion)

	r.Route("/api2/json/cluster/sdn", func(r chi.Router) {
		r.Get("/zones", s.handleZoneList)
		r.Post("/zones", s.handleZoneCreate)
		r.Delete("/zones/{zone}", s.handleZoneDelete)

		r.Get("/vnets", s.handleVnetList)
		r.Post("/vnets", s.handleVnetCreate)
		r.Delete("/vnets/{vnet}", s.handleVnetDelete)

		r.Get("/vnets/{vnet}/subnets", s.handleSubnetList)
		r.Post("/vnets/{vnet}/subnets", s.handleSubnetCreate)
		r.Delete("/vnets/{vnet}/subnets/{subnet}", s.handleSubnetDelete)
	})
	return r
}

// recordAuth captures the credentials of every request.
func (s *Server) recordAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		if auth := r.Header.Get("Authorization"); auth != "" {
			s.LastAuth = auth
		}
		if cookie, err := r.Cookie("PVEAuthCookie"); err == nil {
			s.LastCookie = cookie.Value
		}
		if csrf := r.Header.Get("CSRFPreventionToken"); csrf != "" {
			s.LastCSRF = csrf
		}
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Seed and inspection helpers. Tests use these to arrange cluster state
// without going through the API.

// AddZone seeds a zone.
func (s *Server) AddZone(id, zoneType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := url.Values{}
	v.Set("zone", id)
	v.Set("type", zoneType)
	s.zones[id] = v
}

// AddVnet seeds a vnet belonging to zone.
func (s *Server) AddVnet(id, zone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := url.Values{}
	v.Set("vnet", id)
	v.Set("zone", zone)
	s.vnets[id] = v
}

// AddSubnet seeds a subnet under vnet.
func (s *Server) AddSubnet(vnet, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subnets[vnet] == nil {
		s.subnets[vnet] = make(map[string]url.Values)
	}
	v := url.Values{}
	v.Set("subnet", id)
	s.subnets[vnet][id] = v
}

// Zone returns the stored form values for a zone, or nil.
func (s *Server) Zone(id string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zones[id]
}

// Vnet returns the stored form values for a vnet, or nil.
func (s *Server) Vnet(id string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vnets[id]
}

// Subnet returns the stored form values for a subnet, or nil.
func (s *Server) Subnet(vnet, id string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subnets[vnet][id]
}

// Handlers

func (s *Server) handleTicket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.TicketLogins++
	s.mu.Unlock()

	writeData(w, map[string]string{
		"ticket":              "test-ticket",
		"CSRFPreventionToken": "test-csrf",
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"version": "8.4.1", "release": "8.4"})
}

func (s *Server) handleZoneList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailZoneList {
		writeError(w, http.StatusInternalServerError, "zone listing failed")
		return
	}

	entries := make([]map[string]any, 0, len(s.zones))
	for id, v := range s.zones {
		entries = append(entries, map[string]any{"zone": id, "type": v.Get("type")})
	}
	writeData(w, entries)
}

func (s *Server) handleZoneCreate(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, func(form url.Values) (string, bool) {
		id := form.Get("zone")
		if id == "" {
			return "missing zone parameter", false
		}
		if _, exists := s.zones[id]; exists {
			return "zone '" + id + "' already exists", false
		}
		s.zones[id] = form
		return "", true
	})
}

func (s *Server) handleZoneDelete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "zone")
	s.delete(w, func() (string, bool) {
		if _, exists := s.zones[id]; !exists {
			return "zone '" + id + "' does not exist", false
		}
		delete(s.zones, id)
		return "", true
	})
}

func (s *Server) handleVnetList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailVnetList {
		writeError(w, http.StatusInternalServerError, "vnet listing failed")
		return
	}

	entries := make([]map[string]any, 0, len(s.vnets))
	for id, v := range s.vnets {
		entries = append(entries, map[string]any{
			"vnet":  id,
			"zone":  v.Get("zone"),
			"alias": v.Get("alias"),
		})
	}
	writeData(w, entries)
}

func (s *Server) handleVnetCreate(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, func(form url.Values) (string, bool) {
		id := form.Get("vnet")
		if id == "" {
			return "missing vnet parameter", false
		}
		if _, exists := s.vnets[id]; exists {
			return "vnet '" + id + "' already exists", false
		}
		s.vnets[id] = form
		return "", true
	})
}

func (s *Server) handleVnetDelete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "vnet")
	s.delete(w, func() (string, bool) {
		if _, exists := s.vnets[id]; !exists {
			return "vnet '" + id + "' does not exist", false
		}
		delete(s.vnets, id)
		return "", true
	})
}

func (s *Server) handleSubnetList(w http.ResponseWriter, r *http.Request) {
	vnet := pathParam(r, "vnet")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSubnetList {
		writeError(w, http.StatusInternalServerError, "subnet listing failed")
		return
	}

	entries := make([]map[string]any, 0, len(s.subnets[vnet]))
	for id := range s.subnets[vnet] {
		entries = append(entries, map[string]any{"subnet": id, "vnet": vnet, "cidr": id})
	}
	writeData(w, entries)
}

func (s *Server) handleSubnetCreate(w http.ResponseWriter, r *http.Request) {
	vnet := pathParam(r, "vnet")
	s.create(w, r, func(form url.Values) (string, bool) {
		id := form.Get("subnet")
		if id == "" {
			return "missing subnet parameter", false
		}
		if _, exists := s.subnets[vnet][id]; exists {
			return "subnet '" + id + "' already exists", false
		}
		if s.subnets[vnet] == nil {
			s.subnets[vnet] = make(map[string]url.Values)
		}
		s.subnets[vnet][id] = form
		return "", true
	})
}

func (s *Server) handleSubnetDelete(w http.ResponseWriter, r *http.Request) {
	vnet := pathParam(r, "vnet")
	id := pathParam(r, "subnet")
	s.delete(w, func() (string, bool) {
		if _, exists := s.subnets[vnet][id]; !exists {
			return "subnet '" + id + "' does not exist", false
		}
		delete(s.subnets[vnet], id)
		return "", true
	})
}

// create runs one create request under the lock: decode the form, count
// the call, then hand the values to store.
func (s *Server) create(w http.ResponseWriter, r *http.Request, store func(url.Values) (string, bool)) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.CreateCalls++
	form := copyValues(r.PostForm)
	s.LastCreate = form

	if s.FailCreate {
		writeError(w, http.StatusInternalServerError, "create failed")
		return
	}
	if msg, ok := store(form); !ok {
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	writeData(w, nil)
}

// delete runs one delete request under the lock.
func (s *Server) delete(w http.ResponseWriter, remove func() (string, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DeleteCalls++

	if s.FailDelete {
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if msg, ok := remove(); !ok {
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	writeData(w, nil)
}

// pathParam returns a decoded URL parameter. chi leaves escaped segments
// untouched, which matters for subnet identifiers carrying %2F.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func copyValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for key, vals := range v {
		out[key] = append([]string(nil), vals...)
	}
	return out
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"errors": map[string]string{"message": message}})
}
