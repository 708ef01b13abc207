package models

import "testing"

func TestOrgFilterSQL(t *testing.T) {
	platform := TenantScope{ServiceKey: "hotel"}
	clause, args := platform.OrgFilterSQL("organization_id", 2)
	if clause != "organization_id IS NULL" {
		t.Fatalf("platform clause = %q", clause)
	}
	if len(args) != 0 {
		t.Fatalf("platform scope must not bind an org arg")
	}

	org := "org-9"
	scoped := TenantScope{ServiceKey: "hotel", OrganizationID: &org}
	clause, args = scoped.OrgFilterSQL("organization_id", 2)
	if clause != "organization_id = $2" {
		t.Fatalf("org clause = %q", clause)
	}
	if len(args) != 1 || args[0] != "org-9" {
		t.Fatalf("org args = %v", args)
	}
}

func TestChannelTargetFromParam(t *testing.T) {
	target := ChannelTargetFromParam("")
	if !target.IsPlatformDefault() {
		t.Fatalf("empty param should address the platform default slot")
	}
	if _, ok := target.ChannelID(); ok {
		t.Fatalf("platform target carries no channel id")
	}

	target = ChannelTargetFromParam("c7")
	id, ok := target.ChannelID()
	if !ok || id != "c7" {
		t.Fatalf("channel target = %q, %v", id, ok)
	}
	if target.SlotKey() != "c7" {
		t.Fatalf("slot key = %q", target.SlotKey())
	}
}

func TestPageMeta(t *testing.T) {
	page := Page{Number: 2, Limit: 20}
	meta := NewPageMeta(page, 45)

	if meta.TotalPages != 3 {
		t.Fatalf("totalPages = %d", meta.TotalPages)
	}
	if !meta.HasNext || !meta.HasPrev {
		t.Fatalf("page 2 of 3 has both neighbours, got next=%v prev=%v", meta.HasNext, meta.HasPrev)
	}

	meta = NewPageMeta(Page{Number: 1, Limit: 20}, 0)
	if meta.HasNext || meta.HasPrev {
		t.Fatalf("empty result set has no neighbours")
	}
}

func TestPageNormalize(t *testing.T) {
	p := Page{Number: -1, Limit: 9999, SortOrder: "sideways"}
	p.Normalize()
	if p.Number != 1 {
		t.Fatalf("page = %d", p.Number)
	}
	if p.Limit != MaxPageLimit {
		t.Fatalf("limit = %d", p.Limit)
	}
	if p.SortOrder != "desc" {
		t.Fatalf("sortOrder = %q", p.SortOrder)
	}

	p = Page{SortOrder: "asc"}
	p.Normalize()
	if p.SortOrder != "asc" || p.Limit != DefaultPageLimit {
		t.Fatalf("asc/default normalization broken: %+v", p)
	}

	if col := p.SortColumn(map[string]string{"name": "name"}, "created_at"); col != "created_at" {
		t.Fatalf("unknown sort key must fall back, got %q", col)
	}
}
