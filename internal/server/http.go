package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/control"
	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/keymap"
	"github.com/muurk/tvremote/internal/remote"
	"github.com/muurk/tvremote/internal/version"
)

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/devices", s.handleDevices)
	s.mux.HandleFunc("POST /api/discovery/start", s.handleDiscoveryStart)
	s.mux.HandleFunc("POST /api/discovery/stop", s.handleDiscoveryStop)
	s.mux.HandleFunc("POST /api/connect", s.handleConnect)
	s.mux.HandleFunc("POST /api/disconnect", s.handleDisconnect)
	s.mux.HandleFunc("POST /api/forget", s.handleForget)
	s.mux.HandleFunc("GET /api/buttons", s.handleButtons)
	s.mux.HandleFunc("POST /api/buttons/{button}", s.handlePress)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/version", s.handleVersion)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.remote.State())
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.remote.Devices()
	if devices == nil {
		devices = []*device.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleDiscoveryStart(w http.ResponseWriter, r *http.Request) {
	started := s.remote.StartDiscovery()
	writeJSON(w, http.StatusAccepted, map[string]bool{
		"started":  started,
		"scanning": true,
	})
}

func (s *Server) handleDiscoveryStop(w http.ResponseWriter, r *http.Request) {
	s.remote.StopDiscovery()
	writeJSON(w, http.StatusOK, s.remote.State())
}

// connectRequest selects a discovered device by ID, or describes a device
// directly by host.
type connectRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Vendor string `json:"vendor"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	var err error
	switch {
	case req.Host != "":
		var d *device.Device
		d, err = req.device()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		err = s.remote.Connect(r.Context(), d)
	case req.ID != "":
		err = s.remote.ConnectByID(r.Context(), req.ID)
	default:
		writeError(w, http.StatusBadRequest, "either id or host is required")
		return
	}

	if errors.Is(err, remote.ErrDeviceNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.remote.State())
}

func (req connectRequest) device() (*device.Device, error) {
	vendor, err := device.ParseVendor(req.Vendor)
	if err != nil {
		return nil, err
	}
	port := req.Port
	if port == 0 {
		port = vendor.DefaultPort()
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}
	d := device.New(req.Name, req.Host, port, vendor)
	if req.ID != "" {
		d.ID = req.ID
	}
	return d, nil
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.remote.Disconnect()
	writeJSON(w, http.StatusOK, s.remote.State())
}

func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	if err := s.remote.Forget(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.remote.State())
}

type buttonInfo struct {
	Button   device.Button   `json:"button"`
	Glyph    string          `json:"glyph"`
	Category device.Category `json:"category"`
	Token    string          `json:"token,omitempty"`
}

// handleButtons lists every button. Tokens are included for the vendor
// named by ?vendor= or, failing that, the connected device's vendor.
func (s *Server) handleButtons(w http.ResponseWriter, r *http.Request) {
	vendor := device.VendorUnknown
	if q := r.URL.Query().Get("vendor"); q != "" {
		v, err := device.ParseVendor(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		vendor = v
	} else if d := s.remote.State().ConnectedDevice; d != nil {
		vendor = d.Vendor
	}

	out := make([]buttonInfo, 0, len(device.Buttons))
	for _, b := range device.Buttons {
		out = append(out, buttonInfo{
			Button:   b,
			Glyph:    b.Glyph(),
			Category: b.Category(),
			Token:    keymap.Command(b, vendor),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	button, err := device.ParseButton(r.PathValue("button"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.remote.SendCommand(r.Context(), button); err != nil {
		s.logger.Debug("button press failed", zap.String("button", string(button)), zap.Error(err))
		writeError(w, pressStatus(err), control.ShortMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"button": string(button),
		"status": "sent",
	})
}

// pressStatus maps a SendCommand failure onto an HTTP status
func pressStatus(err error) int {
	var devErr *control.DeviceError
	switch {
	case errors.Is(err, control.ErrNoDevice):
		return http.StatusConflict
	case errors.Is(err, control.ErrUnknownVendor), errors.Is(err, control.ErrNoMapping):
		return http.StatusUnprocessableEntity
	case errors.As(err, &devErr) && devErr.Type == control.ErrTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Map())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "about:blank",
		"title":  http.StatusText(status),
		"status": status,
		"detail": strings.TrimSpace(detail),
	})
}
