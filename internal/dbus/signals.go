package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const nameOwnerChanged = "org.freedesktop.DBus.NameOwnerChanged"

// EmitStateChanged emits the StateChanged signal.
func (s *Service) EmitStateChanged(active bool) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := s.conn.Emit(ObjectPath, Interface+".StateChanged", active); err != nil {
		return fmt.Errorf("failed to emit StateChanged signal: %w", err)
	}

	s.logger.Debug("emitted StateChanged signal", "active", active)
	return nil
}

func peerMatch(peer string) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, peer),
	}
}

func (s *Service) setPeer(peer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer == peer {
		return
	}
	if s.peer != "" {
		s.unwatchPeer(s.peer)
	}
	s.peer = peer
	if peer == "" || s.conn == nil {
		return
	}
	if err := s.conn.AddMatchSignal(peerMatch(peer)...); err != nil {
		s.logger.Warn("failed to watch settings session owner", "peer", peer, "error", err)
	}
}

func (s *Service) clearPeer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer != "" {
		s.unwatchPeer(s.peer)
	}
	s.peer = ""
}

// unwatchPeer must be called with mu held.
func (s *Service) unwatchPeer(peer string) {
	if s.conn == nil {
		return
	}
	if err := s.conn.RemoveMatchSignal(peerMatch(peer)...); err != nil {
		s.logger.Debug("failed to remove peer match", "peer", peer, "error", err)
	}
}

// peerVanished reports whether sig says the session owner left the bus.
func (s *Service) peerVanished(sig *dbus.Signal) bool {
	if sig == nil || sig.Name != nameOwnerChanged || len(sig.Body) != 3 {
		return false
	}
	name, _ := sig.Body[0].(string)
	newOwner, _ := sig.Body[2].(string)
	if newOwner != "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return name != "" && name == s.peer
}

// watchPeers rejects the remote settings session when its owner
// disconnects without accepting or rejecting.
func (s *Service) watchPeers() {
	ch := make(chan *dbus.Signal, 16)
	s.conn.Signal(ch)
	defer s.conn.RemoveSignal(ch)

	s.mu.Lock()
	stopCh := s.stopCh
	s.mu.Unlock()

	for {
		select {
		case <-stopCh:
			return
		case sig, ok := <-ch:
			if !ok {
				return
			}
			if !s.peerVanished(sig) {
				continue
			}
			s.logger.Info("settings session owner left the bus, rejecting session")
			s.clearPeer()
			if err := s.handler.RejectSettings(); err != nil {
				s.logger.Warn("failed to reject abandoned settings session", "error", err)
			}
		}
	}
}
