// Package schema declares the API surface as explicit data: which entity
// each operation touches, which roles it demands, and which fields it
// accepts. Authorization metadata lives here, decoupled from the storage
// structs, and is assembled once at startup.
package schema

import (
	"fmt"

	"github.com/coursehq/courseapi/pkg/auth"
)

// Entity names the object types exposed by the API
type Entity string

const (
	EntityCourse     Entity = "course"
	EntityCollection Entity = "collection"
	EntityUser       Entity = "user"
)

// FieldMode tags how a field participates in an operation
type FieldMode int

const (
	FieldRequired FieldMode = iota
	FieldOptional
	// FieldAdminOnly is honored only for ADMIN principals and silently
	// ignored for everyone else (e.g. explicit course owner on create)
	FieldAdminOnly
)

// Field describes one input field of an operation
type Field struct {
	Name      string
	Mode      FieldMode
	MinLength int
	MaxLength int
}

// Operation describes one exposed operation and its role gate. An empty
// RequiredRoles set means any authenticated principal passes; Public
// operations skip authentication entirely.
type Operation struct {
	Name          string
	Entity        Entity
	Public        bool
	RequiredRoles []auth.Role
	Fields        []Field
}

// Operation names
const (
	OpListCourses     = "listCourses"
	OpGetCourse       = "getCourse"
	OpCreateCourse    = "createCourse"
	OpUpdateCourse    = "updateCourse"
	OpDeleteCourse    = "deleteCourse"
	OpListCollections = "listCollections"
	OpGetCollection   = "getCollection"
	OpRegisterUser    = "registerUser"
	OpLogin           = "login"
	OpListUsers       = "listUsers"
)

// Registry holds the assembled operation descriptors
type Registry struct {
	ops map[string]Operation
}

// Assemble builds the operation registry. Called once at startup; services
// consult the result instead of carrying role annotations on entities.
func Assemble() *Registry {
	anyAuthenticated := []auth.Role{}
	adminOnly := []auth.Role{auth.RoleAdmin}

	ops := []Operation{
		{Name: OpListCourses, Entity: EntityCourse, RequiredRoles: anyAuthenticated},
		{Name: OpGetCourse, Entity: EntityCourse, RequiredRoles: anyAuthenticated},
		{
			Name: OpCreateCourse, Entity: EntityCourse, RequiredRoles: anyAuthenticated,
			Fields: []Field{
				{Name: "title", Mode: FieldRequired},
				{Name: "description", Mode: FieldOptional},
				{Name: "duration", Mode: FieldRequired},
				{Name: "outcome", Mode: FieldOptional},
				{Name: "collectionId", Mode: FieldOptional},
				{Name: "assocatedUserId", Mode: FieldAdminOnly},
			},
		},
		{
			Name: OpUpdateCourse, Entity: EntityCourse, RequiredRoles: anyAuthenticated,
			Fields: []Field{
				{Name: "title", Mode: FieldOptional},
				{Name: "description", Mode: FieldOptional},
				{Name: "duration", Mode: FieldOptional},
				{Name: "outcome", Mode: FieldOptional},
			},
		},
		{Name: OpDeleteCourse, Entity: EntityCourse, RequiredRoles: anyAuthenticated},
		{Name: OpListCollections, Entity: EntityCollection, RequiredRoles: anyAuthenticated},
		{Name: OpGetCollection, Entity: EntityCollection, RequiredRoles: anyAuthenticated},
		{
			Name: OpRegisterUser, Entity: EntityUser, Public: true,
			Fields: []Field{
				{Name: "username", Mode: FieldRequired, MinLength: 3, MaxLength: 30},
				{Name: "password", Mode: FieldRequired, MinLength: 8, MaxLength: 50},
				{Name: "role", Mode: FieldOptional},
			},
		},
		{
			Name: OpLogin, Entity: EntityUser, Public: true,
			Fields: []Field{
				{Name: "username", Mode: FieldRequired},
				{Name: "password", Mode: FieldRequired},
			},
		},
		{Name: OpListUsers, Entity: EntityUser, RequiredRoles: adminOnly},
	}

	reg := &Registry{ops: make(map[string]Operation, len(ops))}
	for _, op := range ops {
		reg.ops[op.Name] = op
	}
	return reg
}

// Get returns the descriptor for a named operation
func (r *Registry) Get(name string) (Operation, error) {
	op, ok := r.ops[name]
	if !ok {
		return Operation{}, fmt.Errorf("unknown operation: %s", name)
	}
	return op, nil
}

// MustGet returns the descriptor for a named operation and panics if it was
// never assembled. Operation names are compile-time constants, so a miss is
// a programming error.
func (r *Registry) MustGet(name string) Operation {
	op, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return op
}

// RequiredRoles returns the role gate for a named operation
func (r *Registry) RequiredRoles(name string) []auth.Role {
	return r.MustGet(name).RequiredRoles
}

// FieldByName returns a field descriptor of an operation
func (op Operation) FieldByName(name string) (Field, bool) {
	for _, f := range op.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
