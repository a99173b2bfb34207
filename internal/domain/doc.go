// Package domain contains the core domain entities and value objects for CoCa.
//
// This package represents the innermost layer of the application. It has no
// dependencies on infrastructure concerns (HTTP, SQLite, logging) and
// contains only the dilution arithmetic and its validation rules.
//
// # Entities
//
//   - [Compound]: A named chemical entity with a stock concentration and unit
//   - [DilutionRequest]: One C1V1 = C2V2 calculation, constructed per request
//
// # Design Principles
//
// Domain entities are:
//   - Plain values, copied freely, never aliased by callers
//   - Free of infrastructure dependencies
//   - Deterministic: every error is a pure function of the input
package domain
