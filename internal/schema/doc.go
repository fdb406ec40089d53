// Package schema loads snapshot scripts: ordered lists of state snapshots
// fed to the engine by the simulate, plan and validate commands.
//
// Scripts are written in YAML or CUE. A route is either a bare name or a
// {name, params} object:
//
//	name: checkout
//	snapshots:
//	  - routes: [home]
//	  - routes: [home, {name: dish, params: {id: 7}}]
//	    toast: {is_shown: true, content: SAVED}
//
// CUE scripts are unified with the embedded #Script definition (script.cue)
// before decoding, so CUE reports type and shape errors with positions.
// YAML scripts are decoded strictly (unknown fields are errors) and then
// checked by Script.Validate.
package schema
