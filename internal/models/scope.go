// ===============================
// internal/models/scope.go - Tenant scope and channel targeting
// ===============================

package models

import "fmt"

// TenantScope identifies the tenant boundary for every read and write.
// ServiceKey is mandatory. OrganizationID narrows the scope further; when
// nil the scope is the platform tier, which owns rows whose organization_id
// is NULL and nothing else.
type TenantScope struct {
	ServiceKey     string  `json:"serviceKey"`
	OrganizationID *string `json:"organizationId,omitempty"`
}

func (s TenantScope) IsValid() bool {
	return s.ServiceKey != ""
}

func (s TenantScope) IsPlatform() bool {
	return s.OrganizationID == nil
}

// OrgFilterSQL returns the organization predicate for this scope with the
// given column reference. Platform scope pins organization_id to NULL so
// platform rows never mix with organization rows.
func (s TenantScope) OrgFilterSQL(column string, argIndex int) (string, []interface{}) {
	if s.OrganizationID == nil {
		return column + " IS NULL", nil
	}
	return fmt.Sprintf("%s = $%d", column, argIndex), []interface{}{*s.OrganizationID}
}

// ChannelTarget is the explicit form of "which display is this for".
// A schedule or resolution request either names a specific channel or
// addresses the platform default slot; there is no null channel id in the
// domain layer.
type ChannelTarget struct {
	channelID string
	platform  bool
}

func SpecificChannel(id string) ChannelTarget {
	return ChannelTarget{channelID: id}
}

func PlatformDefaultChannel() ChannelTarget {
	return ChannelTarget{platform: true}
}

// ChannelTargetFromParam maps an optional request parameter onto a target:
// empty means the platform default slot.
func ChannelTargetFromParam(channelID string) ChannelTarget {
	if channelID == "" {
		return PlatformDefaultChannel()
	}
	return SpecificChannel(channelID)
}

func (t ChannelTarget) IsPlatformDefault() bool {
	return t.platform
}

// ChannelID returns the channel id and whether one is present.
func (t ChannelTarget) ChannelID() (string, bool) {
	if t.platform {
		return "", false
	}
	return t.channelID, true
}

// SlotKey is the uniqueness key used for override slots. Platform-default
// overrides share a single well-known slot.
func (t ChannelTarget) SlotKey() string {
	if t.platform {
		return "platform-default"
	}
	return t.channelID
}
