package app

import (
	"github.com/specialistvlad/cmdlist/internal/registry"
	"github.com/specialistvlad/cmdlist/modules/dump"
	"github.com/specialistvlad/cmdlist/modules/handling"
	"github.com/specialistvlad/cmdlist/modules/inject"
	"github.com/specialistvlad/cmdlist/modules/reset"
	"github.com/specialistvlad/cmdlist/modules/viewclear"
)

// coreModules is the definitive list of all built-in modules compiled into
// the cmdlist binary.
var coreModules = []registry.Module{
	&handling.Module{},
	&inject.Module{},
	&viewclear.Module{},
	&dump.Module{},
	&reset.Module{},
}

// CoreModules returns the built-in modules NewApp registers when it is given
// none, so callers can extend the set.
func CoreModules() []registry.Module {
	return append([]registry.Module(nil), coreModules...)
}
