package app

import (
	"github.com/vk/extbind/internal/bootstrap"
	"github.com/vk/extbind/modules/env"
	"github.com/vk/extbind/modules/hello"
)

// coreModules is the definitive list of all modules that are compiled into
// the extbind binary, in registration order.
var coreModules = []bootstrap.Module{
	&hello.Module{},
	&env.Module{},
}
