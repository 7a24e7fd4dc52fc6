// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The assistant ties the pieces together: extraction feeds the index,
// the chain answers from retrieved chunks, the comparison brief and
// session log work on the same session.
package services
