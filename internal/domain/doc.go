// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The role hierarchy used by the authorization gate lives here because a
// role is an attribute of the User entity.
package domain
