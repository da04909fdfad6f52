package systemd

import (
	"context"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Manager reads unit state over D-Bus.
type Manager struct {
	conn *dbus.Conn
}

// NewManager connects to the system bus, or the user bus when user is set.
func NewManager(ctx context.Context, user bool) (*Manager, error) {
	var conn *dbus.Conn
	var err error
	if user {
		conn, err = dbus.NewUserConnectionContext(ctx)
	} else {
		conn, err = dbus.NewSystemConnectionContext(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &Manager{conn: conn}, nil
}

// UnitStatus is the subset of unit properties the status API reports.
type UnitStatus struct {
	ActiveState string `json:"active_state" example:"active" doc:"systemd ActiveState"`
	SubState    string `json:"sub_state" example:"running" doc:"systemd SubState"`
}

// GetServiceStatus retrieves the ActiveState and SubState of a unit.
func (m *Manager) GetServiceStatus(ctx context.Context, unit string) (UnitStatus, error) {
	props, err := m.conn.GetUnitPropertiesContext(ctx, unit)
	if err != nil {
		return UnitStatus{}, err
	}
	status := UnitStatus{}
	if v, ok := props["ActiveState"].(string); ok {
		status.ActiveState = v
	}
	if v, ok := props["SubState"].(string); ok {
		status.SubState = v
	}
	return status, nil
}

// Close cleanly closes the D-Bus connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}
