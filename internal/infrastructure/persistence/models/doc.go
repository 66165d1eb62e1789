// Package models contains GORM persistence models mapped to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// domain type with ToDomain and FromDomain.
package models
