// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [CompoundRepository]: Persists and loads the compound registry
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The registry and web layers depend only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (SQLite, JSON file, zerolog).
//
// This separation enables:
//   - Testing registry logic with mock implementations
//   - Swapping the storage backend without changing business logic
//   - Clear boundaries and dependency direction
package ports
