// Package action defines the typed lifecycle actions folded by the reducer
// and the creators that build them.
//
// Every action carries a type string of the form
//
//	@AJ/<KIND>/<job name>
//
// for example "@AJ/START/FETCH_PROFILE", so host applications can match
// actions for one job name without inspecting other fields. Actions whose
// type lacks the "@AJ/" prefix are foreign to this package and are ignored
// by the reducer.
//
// # Creators
//
// [Create] and [Start] generate an ID when none is given. [Succeed], [Fail],
// [Cancel] and [Remove] address an existing job and always take its ID.
// A [Set] binds the six creators to one job name:
//
//	var Login = action.NewSet("LOGIN")
//
//	a := Login.Start(action.WithPayload(creds))
//	...
//	Login.Fail(a.ID, action.WithError(err))
package action
