// Package core defines the shared language of leaptds.
//
// This package contains:
//   - Call surface types (Argument, Request, Mode, Row)
//   - Collaborator interfaces (Conn, Cursor, Pool, Escaper, Literalizer)
//   - Server configuration (ServerConfig)
//
// pkg/core imports ONLY stdlib. All other packages depend on core, not the reverse.
package core
