package app

import (
	"github.com/vk/fwgen/internal/registry"
	"github.com/vk/fwgen/modules/globals"
)

// coreModules is the definitive list of all modules that are compiled into
// the fwgen binary.
var coreModules = []registry.Module{
	&globals.Module{},
}
