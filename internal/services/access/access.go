// Package access evaluates collection-level access decisions for a caller.
//
// A Decision is a small tagged union: requests are either allowed outright,
// denied outright, or narrowed to rows owned by the caller. Repos consume
// OwnerOnly decisions as query scopes rather than post-filtering.
package access

import (
	"github.com/kenogenyi/zikistorez/internal/domain/enums"
)

type Effect int

const (
	EffectDeny Effect = iota
	EffectAllow
	EffectOwnerOnly
)

type Decision struct {
	effect Effect
}

func Allow() Decision     { return Decision{effect: EffectAllow} }
func Deny() Decision      { return Decision{effect: EffectDeny} }
func OwnerOnly() Decision { return Decision{effect: EffectOwnerOnly} }

func (d Decision) Effect() Effect  { return d.effect }
func (d Decision) Allowed() bool   { return d.effect != EffectDeny }
func (d Decision) OwnerScope() bool { return d.effect == EffectOwnerOnly }

// Caller identifies the requester. AdminSurface is set by the routing layer
// for dashboard-mounted routes; anonymous callers have UserID 0.
type Caller struct {
	UserID       int64
	Role         enums.Role
	AdminSurface bool
}

func (c Caller) IsAdmin() bool         { return c.Role == enums.RoleAdmin }
func (c Caller) IsAuthenticated() bool { return c.UserID > 0 }

// ProductsRead: the public catalog is open, but only approved products are
// returned there; sellers browse their own rows on the dashboard.
func ProductsRead(c Caller) Decision {
	if c.IsAdmin() {
		return Allow()
	}
	if c.AdminSurface {
		if !c.IsAuthenticated() {
			return Deny()
		}
		return OwnerOnly()
	}
	return Allow()
}

func ProductsCreate(c Caller) Decision {
	if !c.IsAuthenticated() {
		return Deny()
	}
	return Allow()
}

func ProductsMutate(c Caller) Decision {
	if c.IsAdmin() {
		return Allow()
	}
	if !c.IsAuthenticated() {
		return Deny()
	}
	return OwnerOnly()
}

func OrdersRead(c Caller) Decision {
	if c.IsAdmin() {
		return Allow()
	}
	if !c.IsAuthenticated() {
		return Deny()
	}
	return OwnerOnly()
}

func UsersRead(c Caller) Decision {
	if c.IsAdmin() {
		return Allow()
	}
	if !c.IsAuthenticated() {
		return Deny()
	}
	return OwnerOnly()
}

// MediaRead: image assets are public on the storefront. On the admin surface
// sellers only see their own uploads.
func MediaRead(c Caller) Decision {
	if c.IsAdmin() {
		return Allow()
	}
	if c.AdminSurface {
		if !c.IsAuthenticated() {
			return Deny()
		}
		return OwnerOnly()
	}
	return Allow()
}

func MediaCreate(c Caller) Decision {
	if !c.IsAuthenticated() {
		return Deny()
	}
	return Allow()
}

// ProductFilesRead narrows to owned rows; the media service additionally
// grants download access to buyers with a paid order for the product.
func ProductFilesRead(c Caller) Decision {
	if c.IsAdmin() {
		return Allow()
	}
	if !c.IsAuthenticated() {
		return Deny()
	}
	return OwnerOnly()
}

func ProductFilesCreate(c Caller) Decision {
	if !c.IsAuthenticated() {
		return Deny()
	}
	return Allow()
}

func ProductsApprove(c Caller) Decision {
	if c.IsAdmin() {
		return Allow()
	}
	return Deny()
}
