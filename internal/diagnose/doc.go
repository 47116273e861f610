// Package diagnose maps free-text error logs to shell remediation scripts.
//
// Each known failure signature is a RepairRule. Rules are collected in a
// Registry and tried in registration order; the first rule whose Matches
// returns true produces the script and later rules are never consulted.
//
//	reg := diagnose.NewRegistry(logger)
//	_ = reg.Register(diagnose.PermissionDenied{})
//	_ = reg.Register(diagnose.MissingDirectory{})
//
//	script, ok := reg.FindRepair(logContent, "acme")
//
// Scripts are suggestions for an operator. Nothing in this package executes them.
package diagnose
