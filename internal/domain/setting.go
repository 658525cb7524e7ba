package domain

import "fmt"

// SettingKey enumerates recognized configuration keys. String-keyed lookups
// from the store are validated against this set at load time.
type SettingKey string

const (
	SettingRatioMaintenance  SettingKey = "preference_ratio_maintenance"
	SettingRatioInstallation SettingKey = "preference_ratio_installation"
	SettingAutoAssignCycle   SettingKey = "auto_assign_cycle"
	SettingStaleThresholdHrs SettingKey = "stale_assignment_threshold_hours"
)

// TicketFeeKey returns the per-type ticket fee key.
func TicketFeeKey(t TicketType) SettingKey {
	return SettingKey(fmt.Sprintf("ticket_fee_%s", t))
}

// TransportFeeKey returns the per-type transport fee key.
func TransportFeeKey(t TicketType) SettingKey {
	return SettingKey(fmt.Sprintf("transport_fee_%s", t))
}

// LegacyBonusKey returns the combined fee key older deployments used.
func LegacyBonusKey(t TicketType) SettingKey {
	return SettingKey(fmt.Sprintf("bonus_%s", t))
}

// KnownSettingKeys lists every key the service will read or write.
func KnownSettingKeys() []SettingKey {
	keys := []SettingKey{
		SettingRatioMaintenance,
		SettingRatioInstallation,
		SettingAutoAssignCycle,
		SettingStaleThresholdHrs,
	}
	for _, t := range []TicketType{TicketTypeHomeMaintenance, TicketTypeBackboneMaintenance, TicketTypeInstallation} {
		keys = append(keys, TicketFeeKey(t), TransportFeeKey(t), LegacyBonusKey(t))
	}
	return keys
}

// IsKnownSettingKey reports whether key is recognized.
func IsKnownSettingKey(key SettingKey) bool {
	for _, k := range KnownSettingKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Setting is a key/value configuration pair.
type Setting struct {
	Key   SettingKey
	Value string
}
