package chargeauth

// Role is the access level stored with a session. Roles are distinct
// capability sets, not a strict hierarchy: StationOperator can do things
// RemoteStation cannot and vice versa, and not every admin-adjacent
// operation is open to operators. Authorization always consults the
// per-operation capability functions below, never a role ordering.
type Role int

const (
	// RoleUser is the default, lowest-privilege role: a customer driving
	// their own car.
	RoleUser Role = iota

	// RoleRemoteStation is a charging station authenticating itself to
	// report telemetry and start sessions for presented RFID tags.
	RoleRemoteStation

	// RoleStationOperator manages existing stations (metadata, outages)
	// but cannot create them or touch customer accounts.
	RoleStationOperator

	// RoleAdmin has the full capability set.
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleUser:            "User",
	RoleRemoteStation:   "RemoteStation",
	RoleStationOperator: "StationOperator",
	RoleAdmin:           "Admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "User"
}

// ParseRole maps a stored access-rights string to a Role. Unknown strings
// fall back to RoleUser, the lowest-privilege role, so a corrupted session
// row can never grant elevated access.
func ParseRole(s string) Role {
	switch s {
	case "Admin":
		return RoleAdmin
	case "StationOperator":
		return RoleStationOperator
	case "RemoteStation":
		return RoleRemoteStation
	default:
		return RoleUser
	}
}

// IsAdmin reports whether the session carries the Admin role.
func (s UserSession) IsAdmin() bool { return s.Role == RoleAdmin }

// IsRemoteStation reports whether the session carries the RemoteStation role.
func (s UserSession) IsRemoteStation() bool { return s.Role == RoleRemoteStation }

// IsStationOperator reports whether the session carries the StationOperator role.
func (s UserSession) IsStationOperator() bool { return s.Role == RoleStationOperator }

// Per-operation capability matrix. StationOperator and Admin overlap without
// nesting: operators may update stations but only admins may create them.

// CanCreateStation reports whether the role may register new stations.
func CanCreateStation(r Role) bool { return r == RoleAdmin }

// CanUpdateStation reports whether the role may change station metadata.
func CanUpdateStation(r Role) bool { return r == RoleAdmin || r == RoleStationOperator }

// CanDeleteStation reports whether the role may retire a station.
func CanDeleteStation(r Role) bool { return r == RoleAdmin }

// CanManageTariffs reports whether the role may create or change tariffs.
func CanManageTariffs(r Role) bool { return r == RoleAdmin }

// CanManageCustomers reports whether the role may modify accounts other than
// its own.
func CanManageCustomers(r Role) bool { return r == RoleAdmin }

// CanReportTelemetry reports whether the role may push charge-point
// telemetry.
func CanReportTelemetry(r Role) bool { return r == RoleRemoteStation || r == RoleStationOperator || r == RoleAdmin }

// CanStartCharging reports whether the role may open a charging transaction.
func CanStartCharging(r Role) bool { return r == RoleUser || r == RoleRemoteStation }
