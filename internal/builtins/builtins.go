package builtins

import "github.com/DAIOS-AI/mindscript/internal/interp"

// Register wires every native prelude symbol into ip's root
// environment, then marks that environment as the startup boundary so
// later top-level bindings are recognized as user code rather than
// prelude (mirroring builtins.py's interpreter(), minus the module
// system natives codeImport/import: MindScript's module resolution is
// out of this port's scope, see DESIGN.md).
func Register(ip *interp.Interpreter) {
	defineStd(ip)
	defineMath(ip)
	defineString(ip)
	defineCollections(ip)
	defineNetwork(ip)
	defineSystem(ip)
	ip.Env.Startup = true
	ip.Env = ip.Env.Push()
}
