// Package plugin defines the module/plugin ABI surface from spec §4.4 and
// §6: a constant module descriptor, a block factory, and the registry a
// host uses to discover and construct block instances by string type
// name — whether the block was statically linked in or loaded
// dynamically (see internal/dynload).
package plugin

import "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"

// Version is the module's semantic version (spec §3 "Module descriptor").
type Version struct {
	Major int
	Minor int
	Build int
}

// ModuleDescriptor is the constant record every module exports (spec §3,
// §6). It is process-wide and never mutated once a module is loaded
// (spec §9 "Global mutable state").
type ModuleDescriptor struct {
	Name         string
	Description  string
	Authors      string
	ReleaseDate  string
	Version      Version
	Dependencies []string // "name@vMAJOR.MINOR.BUILD"
	Provides     []string // block type names this module contributes
}

// BlockFactory constructs a new block instance of a specific type, given
// the instance name the host assigned it.
type BlockFactory func(instanceName string) block.Block

// Registry is the public interface for discovering and constructing
// blocks by type name (spec §4.4's "factory function ... constructs a
// block by string type name").
type Registry interface {
	// Get retrieves the factory for a registered block type name. It
	// returns a streamprocerrors.ModuleNotFoundError if name is unknown,
	// matching spec §4.4's "distinguished error handle ... readable by
	// the host" without needing an opaque sentinel value: the error
	// itself is the readable error code.
	Get(name string) (BlockFactory, error)

	// Register associates a block type name with its factory. Must be
	// concurrency-safe. Returns an error on an empty name, a nil
	// factory, or a duplicate name.
	Register(name string, factory BlockFactory) error

	// List returns the names of every block type currently registered.
	// Order is not guaranteed.
	List() []string
}
