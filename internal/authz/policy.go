// Package authz — декларативная таблица прав: ресурс × действие → допустимые роли и требование владения.
package authz

import (
	"errors"

	"travelblog/internal/models"
)

type Resource string

const (
	Article  Resource = "article"
	User     Resource = "user"
	Settings Resource = "settings"
	Stats    Resource = "stats"
	Comment  Resource = "comment"
	Media    Resource = "media"
)

type Action string

const (
	List     Action = "list"
	Read     Action = "read"
	Create   Action = "create"
	Update   Action = "update"
	Delete   Action = "delete"
	Upload   Action = "upload"
	Moderate Action = "moderate"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Actor — тот, кто выполняет действие. Нулевое значение — аноним.
type Actor struct {
	ID   int64
	Role models.Role
}

func (a Actor) Authenticated() bool { return a.ID != 0 }

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsStaff — редактор или администратор.
func (a Actor) IsStaff() bool { return a.Role == models.RoleEditor || a.Role == models.RoleAdmin }

// Rule: роль актора должна входить в Roles; при OwnerOrAdmin дополнительно
// актор должен быть владельцем ресурса либо администратором.
type Rule struct {
	Roles        []models.Role
	OwnerOrAdmin bool
}

type key struct {
	res Resource
	act Action
}

type Policy struct {
	rules map[key]Rule
}

func NewPolicy() *Policy {
	return &Policy{rules: make(map[key]Rule)}
}

func (p *Policy) Allow(res Resource, act Action, rule Rule) *Policy {
	p.rules[key{res, act}] = rule
	return p
}

func (p *Policy) Rule(res Resource, act Action) (Rule, bool) {
	r, ok := p.rules[key{res, act}]
	return r, ok
}

var (
	staff    = []models.Role{models.RoleEditor, models.RoleAdmin}
	admins   = []models.Role{models.RoleAdmin}
	everyone = []models.Role{models.RoleUser, models.RoleEditor, models.RoleAdmin}
)

// Default — права API блога.
func Default() *Policy {
	p := NewPolicy()

	p.Allow(Article, Create, Rule{Roles: staff})
	for _, act := range []Action{Update, Delete, Upload} {
		p.Allow(Article, act, Rule{Roles: staff, OwnerOrAdmin: true})
	}

	for _, act := range []Action{List, Read, Create, Update, Delete, Upload} {
		p.Allow(User, act, Rule{Roles: admins})
	}
	for _, act := range []Action{Read, Update, Upload} {
		p.Allow(Settings, act, Rule{Roles: admins})
	}
	p.Allow(Stats, Read, Rule{Roles: staff})

	p.Allow(Comment, Create, Rule{Roles: everyone})
	p.Allow(Comment, Delete, Rule{Roles: everyone, OwnerOrAdmin: true})
	p.Allow(Comment, List, Rule{Roles: staff})
	p.Allow(Comment, Moderate, Rule{Roles: staff})

	for _, act := range []Action{List, Read, Create} {
		p.Allow(Media, act, Rule{Roles: staff})
	}
	for _, act := range []Action{Update, Delete} {
		p.Allow(Media, act, Rule{Roles: staff, OwnerOrAdmin: true})
	}
	return p
}

// CheckRole проверяет только роль (то, что известно до загрузки ресурса).
func (p *Policy) CheckRole(actor Actor, res Resource, act Action) error {
	rule, ok := p.Rule(res, act)
	if !ok {
		return ErrForbidden
	}
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	if !HasRole(actor.Role, rule.Roles) {
		return ErrForbidden
	}
	return nil
}

// Check проверяет роль и, если правило требует, отношение владения к ресурсу ownerID.
func (p *Policy) Check(actor Actor, res Resource, act Action, ownerID int64) error {
	if err := p.CheckRole(actor, res, act); err != nil {
		return err
	}
	rule, _ := p.Rule(res, act)
	if rule.OwnerOrAdmin && !actor.IsAdmin() && actor.ID != ownerID {
		return ErrForbidden
	}
	return nil
}

func HasRole(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
