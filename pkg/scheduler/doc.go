// Package scheduler provides the client side of the Aurora scheduler API: the
// response envelope, job and task types, session authentication, and a
// Redis-backed transport.
//
// Every remote call returns a Response envelope. A transport failure (the
// scheduler could not be reached at all) is reported through the error return;
// a scheduler that was reached but refused the call answers with a non-OK
// ResponseCode and a human-readable message.
//
// All Redis keys are namespaced by cluster name so several clusters can share
// one Redis server:
//
//	aurora:{cluster}:jobs                       set of role/env/name
//	aurora:{cluster}:role:{role}:jobs           set of role/env/name
//	aurora:{cluster}:job:{role/env/name}        hash of job metadata
//	aurora:{cluster}:job:{role/env/name}:tasks  list of JSON tasks
//	aurora:{cluster}:offline                    refusal message while offline
package scheduler
